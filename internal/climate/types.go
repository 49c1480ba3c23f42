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

// Package climate maps an environmental snapshot and the occupant's
// preferences to a recommended state for every climate device.
//
// Nothing in this package performs I/O or keeps state between calls.
package climate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// AirQuality is an air-quality index reading that may be unknown.
// The zero value is unknown.
type AirQuality struct {
	Index int
	Known bool
}

// UnknownAQI is used when no air-quality signal is available.
var UnknownAQI = AirQuality{}

func KnownAQI(index int) AirQuality {
	return AirQuality{Index: index, Known: true}
}

func (a AirQuality) String() string {
	if !a.Known {
		return "N/A"
	}
	return strconv.Itoa(a.Index)
}

// MarshalJSON encodes an unknown index as null.
func (a AirQuality) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(a.Index)), nil
}

func (a *AirQuality) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = UnknownAQI
		return nil
	}
	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("aqi: %w", err)
	}
	if idx < 0 {
		return fmt.Errorf("aqi: negative index %d", idx)
	}
	*a = KnownAQI(idx)
	return nil
}

// Snapshot is one instant of outdoor conditions.
type Snapshot struct {
	TemperatureC float64    `json:"temperature_c"`
	Humidity     float64    `json:"humidity"`
	AQI          AirQuality `json:"aqi"`
}

// ComfortRange is the indoor range the occupant would like. It is shown
// alongside recommendations but no rule reads it.
type ComfortRange struct {
	MinC float64 `json:"min_c" yaml:"min_c"`
	MaxC float64 `json:"max_c" yaml:"max_c"`
}

// Preferences is the occupant's profile.
type Preferences struct {
	ACThresholdC float64      `json:"ac_threshold_c" yaml:"ac_threshold_c"`
	AQIThreshold int          `json:"aqi_threshold" yaml:"aqi_threshold"`
	ComfortRange ComfortRange `json:"comfort_range" yaml:"comfort_range"`
}

// RecommendedPreferences returns the best-practice profile.
func RecommendedPreferences() Preferences {
	return Preferences{
		ACThresholdC: 27,
		AQIThreshold: 100,
		ComfortRange: ComfortRange{MinC: 20, MaxC: 26},
	}
}

// Bounds accepted for user preferences.
const (
	MinACThresholdC = -20.0
	MaxACThresholdC = 50.0
	MaxAQIThreshold = 500
	MinComfortC     = -20.0
	MaxComfortC     = 50.0
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Preferences) Validate() error {
	if !finite(p.ACThresholdC) || p.ACThresholdC < MinACThresholdC || p.ACThresholdC > MaxACThresholdC {
		return &ConfigError{
			Field:  "ac_threshold_c",
			Reason: fmt.Sprintf("%v is outside %.0f..%.0f", p.ACThresholdC, MinACThresholdC, MaxACThresholdC),
		}
	}
	if p.AQIThreshold < 0 || p.AQIThreshold > MaxAQIThreshold {
		return &ConfigError{
			Field:  "aqi_threshold",
			Reason: fmt.Sprintf("%d is outside 0..%d", p.AQIThreshold, MaxAQIThreshold),
		}
	}
	r := p.ComfortRange
	for _, v := range []float64{r.MinC, r.MaxC} {
		if !finite(v) || v < MinComfortC || v > MaxComfortC {
			return &ConfigError{
				Field:  "comfort_range",
				Reason: fmt.Sprintf("%v is outside %.0f..%.0f", v, MinComfortC, MaxComfortC),
			}
		}
	}
	if r.MinC > r.MaxC {
		return &ConfigError{
			Field:  "comfort_range",
			Reason: fmt.Sprintf("min %.1f is above max %.1f", r.MinC, r.MaxC),
		}
	}
	return nil
}

type Switch string

const (
	Off Switch = "OFF"
	On  Switch = "ON"
)

func switchOf(on bool) Switch {
	if on {
		return On
	}
	return Off
}

// Value is 1 for ON, 0 otherwise.
func (s Switch) Value() float64 {
	if s == On {
		return 1
	}
	return 0
}

type HeaterLevel string

const (
	HeaterOff    HeaterLevel = "OFF"
	HeaterNormal HeaterLevel = "NORMAL"
	HeaterFull   HeaterLevel = "FULL"
)

// Value is 0 for OFF, 1 for NORMAL and 2 for FULL.
func (h HeaterLevel) Value() float64 {
	switch h {
	case HeaterNormal:
		return 1
	case HeaterFull:
		return 2
	}
	return 0
}

// DeviceStates is the recommendation for every device at one instant.
type DeviceStates struct {
	AirConditioner Switch      `json:"air_conditioner"`
	Heater         HeaterLevel `json:"heater"`
	Humidifier     Switch      `json:"humidifier"`
	Dehumidifier   Switch      `json:"dehumidifier"`
	AirPurifier    Switch      `json:"air_purifier"`
}

// AllOff returns a vector with every device switched off.
func AllOff() DeviceStates {
	return DeviceStates{
		AirConditioner: Off,
		Heater:         HeaterOff,
		Humidifier:     Off,
		Dehumidifier:   Off,
		AirPurifier:    Off,
	}
}

// Map returns the states keyed by device name, in the form loggers and
// dashboards expect.
func (d DeviceStates) Map() map[string]string {
	return map[string]string{
		"air_conditioner": string(d.AirConditioner),
		"heater":          string(d.Heater),
		"humidifier":      string(d.Humidifier),
		"dehumidifier":    string(d.Dehumidifier),
		"air_purifier":    string(d.AirPurifier),
	}
}
