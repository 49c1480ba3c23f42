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

type ComfortBand string

const (
	Cold         ComfortBand = "cold"
	MildLow      ComfortBand = "mild_low"
	EnergySaving ComfortBand = "energy_saving"
	MildHigh     ComfortBand = "mild_high"
	Hot          ComfortBand = "hot"

	// binary policy
	Winter ComfortBand = "winter"
	Summer ComfortBand = "summer"
)

// Season selects which humidity rules apply.
type Season int

const (
	SeasonSummer Season = iota
	SeasonWinter
)

// Season maps a band onto the humidity rule set. Only the coldest band
// of either policy uses the winter rules, so both policies agree.
func (b ComfortBand) Season() Season {
	switch b {
	case Cold, Winter:
		return SeasonWinter
	}
	return SeasonSummer
}

type BandPolicy string

const (
	PolicyBanded BandPolicy = "banded"
	PolicyBinary BandPolicy = "binary"
)

// BandEdges are the band boundaries in °C. Both mild bands are closed
// intervals [ColdBelowC, MildLowMaxC] and [MildHighMinC, MildHighMaxC];
// energy saving is the open interval between them.
type BandEdges struct {
	ColdBelowC   float64 `yaml:"cold_below_c" json:"cold_below_c"`
	MildLowMaxC  float64 `yaml:"mild_low_max_c" json:"mild_low_max_c"`
	MildHighMinC float64 `yaml:"mild_high_min_c" json:"mild_high_min_c"`
	MildHighMaxC float64 `yaml:"mild_high_max_c" json:"mild_high_max_c"`
}

var DefaultBandEdges = BandEdges{
	ColdBelowC:   15,
	MildLowMaxC:  20,
	MildHighMinC: 26,
	MildHighMaxC: 30,
}

// Classifier maps an outdoor temperature to a comfort band.
type Classifier struct {
	Policy BandPolicy
	Edges  BandEdges
}

var defaultClassifier = Classifier{Policy: PolicyBanded, Edges: DefaultBandEdges}

// Classify uses the banded policy with the default edges.
func Classify(tempC float64) ComfortBand {
	return defaultClassifier.Classify(tempC)
}

// Classify is total: any float, including NaN (which lands in the
// hottest band), maps to exactly one band.
func (c Classifier) Classify(tempC float64) ComfortBand {
	e := c.Edges
	if c.Policy == PolicyBinary {
		if tempC < e.ColdBelowC {
			return Winter
		}
		return Summer
	}

	switch {
	case tempC < e.ColdBelowC:
		return Cold
	case tempC <= e.MildLowMaxC:
		return MildLow
	case tempC < e.MildHighMinC:
		return EnergySaving
	case tempC <= e.MildHighMaxC:
		return MildHigh
	default:
		return Hot
	}
}
