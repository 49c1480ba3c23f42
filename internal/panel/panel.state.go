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

package panel

import (
	"climactl/internal/climate"
	"fmt"
	"time"
)

type Request struct {
	Command string  `json:"command"`
	Delta   float64 `json:"delta,omitempty"`
}

// Display holds the formatted conditions shown on the panel.
type Display struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	AQI         string `json:"aqi"`
}

type State struct {
	Ready       bool                `json:"ready"`
	Location    string              `json:"location,omitempty"`
	Time        *time.Time          `json:"time,omitempty"`
	Occupied    bool                `json:"occupied"`
	Snapshot    *climate.Snapshot   `json:"snapshot,omitempty"`
	Display     *Display            `json:"display,omitempty"`
	Decision    *climate.Decision   `json:"decision,omitempty"`
	Preferences climate.Preferences `json:"preferences"`
}

func display(s climate.Snapshot) *Display {
	return &Display{
		Temperature: fmt.Sprintf("%.1f°C", s.TemperatureC),
		Humidity:    fmt.Sprintf("%.0f%%", s.Humidity),
		AQI:         s.AQI.String(),
	}
}

func (p *Panel) state() State {
	st := State{
		Occupied:    p.occupancy.Occupied(),
		Preferences: p.advisor.Preferences(),
	}
	latest, ok := p.advisor.Latest()
	if !ok {
		return st
	}
	st.Ready = true
	st.Location = latest.Location
	st.Time = &latest.Time
	st.Occupied = latest.Occupied
	st.Snapshot = &latest.Snapshot
	st.Display = display(latest.Snapshot)
	st.Decision = &latest.Decision
	st.Preferences = latest.Preferences
	return st
}
