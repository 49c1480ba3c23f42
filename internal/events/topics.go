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

package events

import (
	"climactl/internal/climate"
	"climactl/pkg/eventbus"
	"time"
)

var (
	TopicSnapshot    eventbus.Topic = "snapshot"
	TopicOccupancy   eventbus.Topic = "occupancy"
	TopicPreferences eventbus.Topic = "preferences"
	TopicDecision    eventbus.Topic = "decision"
)

// SnapshotUpdate is published after every successful weather fetch.
type SnapshotUpdate struct {
	Snapshot  climate.Snapshot
	Source    string
	Location  string
	Latitude  float64
	Longitude float64
	Time      time.Time
}

type OccupancyUpdate struct {
	Occupied  bool
	Simulated bool
	Time      time.Time
}

type PreferencesUpdate struct {
	Preferences climate.Preferences
	Time        time.Time
}

// DecisionUpdate carries one evaluation and the inputs that produced it.
type DecisionUpdate struct {
	Decision    climate.Decision
	Snapshot    climate.Snapshot
	Preferences climate.Preferences
	Occupied    bool
	Location    string
	Time        time.Time
}
