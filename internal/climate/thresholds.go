// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package climate

import (
	"fmt"
	"sort"
)

// ConfigError reports a threshold or preference that cannot be used.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// HumidityRule switches the humidifier on below HumidifyBelow and the
// dehumidifier on above DehumidifyAbove (relative humidity, %).
type HumidityRule struct {
	HumidifyBelow   float64 `yaml:"humidify_below" json:"humidify_below"`
	DehumidifyAbove float64 `yaml:"dehumidify_above" json:"dehumidify_above"`
}

// Thresholds holds every number the engine compares against.
type Thresholds struct {
	Policy BandPolicy `yaml:"band_policy" json:"band_policy"`
	Bands  BandEdges  `yaml:"bands" json:"bands"`

	HeaterEnabled  bool    `yaml:"heater_enabled" json:"heater_enabled"`
	HeaterLevels   bool    `yaml:"heater_levels" json:"heater_levels"`
	HeatBelowC     float64 `yaml:"heat_below_c" json:"heat_below_c"`
	HeatFullBelowC float64 `yaml:"heat_full_below_c" json:"heat_full_below_c"`

	Winter HumidityRule `yaml:"winter_humidity" json:"winter_humidity"`
	Summer HumidityRule `yaml:"summer_humidity" json:"summer_humidity"`
}

// Profiles are the rule variants the app has shipped with.
//
//   - advanced: five bands, three-level heater, winter dehumidify above 60%
//   - simple:   winter/summer, on/off heater, winter dehumidify above 50%
//   - legacy:   winter/summer, on/off heater, 30/60 humidity all year
var profiles = map[string]Thresholds{
	"advanced": {
		Policy:         PolicyBanded,
		Bands:          DefaultBandEdges,
		HeaterEnabled:  true,
		HeaterLevels:   true,
		HeatBelowC:     15,
		HeatFullBelowC: 8,
		Winter:         HumidityRule{HumidifyBelow: 30, DehumidifyAbove: 60},
		Summer:         HumidityRule{HumidifyBelow: 40, DehumidifyAbove: 60},
	},
	"simple": {
		Policy:         PolicyBinary,
		Bands:          DefaultBandEdges,
		HeaterEnabled:  true,
		HeatBelowC:     15,
		HeatFullBelowC: 8,
		Winter:         HumidityRule{HumidifyBelow: 30, DehumidifyAbove: 50},
		Summer:         HumidityRule{HumidifyBelow: 40, DehumidifyAbove: 60},
	},
	"legacy": {
		Policy:         PolicyBinary,
		Bands:          DefaultBandEdges,
		HeaterEnabled:  true,
		HeatBelowC:     15,
		HeatFullBelowC: 8,
		Winter:         HumidityRule{HumidifyBelow: 30, DehumidifyAbove: 60},
		Summer:         HumidityRule{HumidifyBelow: 30, DehumidifyAbove: 60},
	},
}

const DefaultProfile = "advanced"

// Profile returns a copy of the named preset.
func Profile(name string) (Thresholds, error) {
	th, ok := profiles[name]
	if !ok {
		return Thresholds{}, &ConfigError{Field: "profile", Reason: fmt.Sprintf("unknown profile %q", name)}
	}
	return th, nil
}

// ProfileNames lists the presets in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultThresholds is the advanced profile.
func DefaultThresholds() Thresholds {
	th, _ := Profile(DefaultProfile)
	return th
}

func (t Thresholds) Classifier() Classifier {
	return Classifier{Policy: t.Policy, Edges: t.Bands}
}

// Heater switch points must lie in this range.
const (
	MinHeatC = -50.0
	MaxHeatC = 60.0
)

func (t Thresholds) Validate() error {
	switch t.Policy {
	case PolicyBanded, PolicyBinary:
	default:
		return &ConfigError{Field: "band_policy", Reason: fmt.Sprintf("unknown policy %q", t.Policy)}
	}

	b := t.Bands
	edges := []float64{b.ColdBelowC, b.MildLowMaxC, b.MildHighMinC, b.MildHighMaxC}
	for i, v := range edges {
		if !finite(v) {
			return &ConfigError{Field: "bands", Reason: fmt.Sprintf("edge %v is not finite", v)}
		}
		if i > 0 && v <= edges[i-1] {
			return &ConfigError{Field: "bands", Reason: fmt.Sprintf("edges must increase: %v", edges)}
		}
	}

	for _, h := range []struct {
		field string
		v     float64
	}{{"heat_below_c", t.HeatBelowC}, {"heat_full_below_c", t.HeatFullBelowC}} {
		if !finite(h.v) || h.v < MinHeatC || h.v > MaxHeatC {
			return &ConfigError{Field: h.field, Reason: fmt.Sprintf("%v is outside %.0f..%.0f", h.v, MinHeatC, MaxHeatC)}
		}
	}

	if t.HeaterEnabled && t.HeaterLevels && t.HeatFullBelowC > t.HeatBelowC {
		return &ConfigError{
			Field:  "heat_full_below_c",
			Reason: fmt.Sprintf("%.1f is above heat_below_c %.1f", t.HeatFullBelowC, t.HeatBelowC),
		}
	}

	if err := t.Winter.validate("winter_humidity"); err != nil {
		return err
	}
	return t.Summer.validate("summer_humidity")
}

func (r HumidityRule) validate(field string) error {
	for _, v := range []float64{r.HumidifyBelow, r.DehumidifyAbove} {
		if !finite(v) || v < 0 || v > 100 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("%v is outside 0..100", v)}
		}
	}
	if r.HumidifyBelow >= r.DehumidifyAbove {
		return &ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("humidify_below %.0f must be under dehumidify_above %.0f", r.HumidifyBelow, r.DehumidifyAbove),
		}
	}
	return nil
}

// rule returns the humidity rule for a band.
func (t Thresholds) rule(band ComfortBand) HumidityRule {
	if band.Season() == SeasonWinter {
		return t.Winter
	}
	return t.Summer
}
