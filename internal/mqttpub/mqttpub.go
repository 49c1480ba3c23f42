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

// Package mqttpub publishes each decision to an MQTT broker.
package mqttpub

import (
	"climactl/internal/climate"
	"climactl/internal/events"
	"encoding/json"
	"time"
)

const DefaultTopic = "climactl/decision"

type Publisher interface {
	Publish(update events.DecisionUpdate) error
	Close() error
}

type Payload struct {
	Time     string               `json:"time"`
	Location string               `json:"location,omitempty"`
	Band     climate.ComfortBand  `json:"band"`
	Occupied bool                 `json:"occupied"`
	States   climate.DeviceStates `json:"states"`
	Advisory string               `json:"advisory,omitempty"`
	Snapshot climate.Snapshot     `json:"snapshot"`
}

func FormatPayload(update events.DecisionUpdate) ([]byte, error) {
	return json.Marshal(Payload{
		Time:     update.Time.UTC().Format(time.RFC3339),
		Location: update.Location,
		Band:     update.Decision.Band,
		Occupied: update.Occupied,
		States:   update.Decision.States,
		Advisory: update.Decision.Advisory,
		Snapshot: update.Snapshot,
	})
}
