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

// AdvisoryVacant accompanies the all-off vector returned for an empty room.
const AdvisoryVacant = "Room vacant: all devices off to save energy"

// Engine turns conditions into device recommendations. It only holds
// its thresholds, so one Engine can serve any number of goroutines.
type Engine struct {
	th Thresholds
}

func NewEngine(th Thresholds) (*Engine, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Engine{th: th}, nil
}

func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Classify bands a temperature using the engine's policy.
func (e *Engine) Classify(tempC float64) ComfortBand {
	return e.th.Classifier().Classify(tempC)
}

// Decide returns the recommended device states. The second value is an
// advisory for the caller to show; it is empty unless the room is vacant.
func (e *Engine) Decide(s Snapshot, p Preferences, band ComfortBand, occupied bool) (DeviceStates, string) {
	states := AllOff()
	if !occupied {
		return states, AdvisoryVacant
	}

	states.AirConditioner = switchOf(s.TemperatureC > p.ACThresholdC)
	states.Heater = e.heater(s.TemperatureC)

	rule := e.th.rule(band)
	if s.Humidity < rule.HumidifyBelow {
		states.Humidifier = On
	} else if s.Humidity > rule.DehumidifyAbove {
		states.Dehumidifier = On
	}

	states.AirPurifier = switchOf(s.AQI.Known && s.AQI.Index > p.AQIThreshold)
	return states, ""
}

func (e *Engine) heater(tempC float64) HeaterLevel {
	if !e.th.HeaterEnabled {
		return HeaterOff
	}
	level := HeaterOff
	if tempC < e.th.HeatBelowC {
		level = HeaterNormal
	}
	// colder threshold last so it wins
	if e.th.HeaterLevels && tempC < e.th.HeatFullBelowC {
		level = HeaterFull
	}
	return level
}

// Decision is one complete evaluation.
type Decision struct {
	Band     ComfortBand  `json:"band"`
	States   DeviceStates `json:"states"`
	Advisory string       `json:"advisory,omitempty"`
}

// Evaluate classifies the snapshot and decides in one step.
func (e *Engine) Evaluate(s Snapshot, p Preferences, occupied bool) Decision {
	band := e.Classify(s.TemperatureC)
	states, advisory := e.Decide(s, p, band, occupied)
	return Decision{Band: band, States: states, Advisory: advisory}
}
