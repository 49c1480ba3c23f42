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

package advisor

import (
	"climactl/internal/climate"
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"context"
	"sync"
	"time"
)

// Advisor re-evaluates the room whenever conditions, occupancy or
// preferences change and publishes the result.
type Advisor struct {
	eb     *eventbus.Bus
	engine *climate.Engine
	log    *logger.Logger

	mu          sync.RWMutex
	snapshot    climate.Snapshot
	location    string
	prefs       climate.Preferences
	occupied    bool
	latest      events.DecisionUpdate
	hasSnapshot bool
	hasDecision bool
}

func New(eb *eventbus.Bus, engine *climate.Engine, prefs climate.Preferences, occupied bool) *Advisor {
	return &Advisor{
		eb:       eb,
		engine:   engine,
		prefs:    prefs,
		occupied: occupied,
		log:      logger.New("Advisor"),
	}
}

// GetData returns numeric device states for the data logger.
func (a *Advisor) GetData() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data := map[string]float64{}
	if !a.hasDecision {
		return data
	}
	s := a.latest.Decision.States
	data["air_conditioner"] = s.AirConditioner.Value()
	data["heater"] = s.Heater.Value()
	data["humidifier"] = s.Humidifier.Value()
	data["dehumidifier"] = s.Dehumidifier.Value()
	data["air_purifier"] = s.AirPurifier.Value()
	data["outdoor_temp"] = a.latest.Snapshot.TemperatureC
	data["outdoor_humidity"] = a.latest.Snapshot.Humidity
	if a.latest.Snapshot.AQI.Known {
		data["aqi"] = float64(a.latest.Snapshot.AQI.Index)
	}
	data["occupied"] = 0
	if a.latest.Occupied {
		data["occupied"] = 1
	}
	return data
}

// Latest returns the most recent decision, if any.
func (a *Advisor) Latest() (events.DecisionUpdate, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest, a.hasDecision
}

func (a *Advisor) Preferences() climate.Preferences {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prefs
}

func (a *Advisor) Engine() *climate.Engine {
	return a.engine
}

func (a *Advisor) Run(ctx context.Context) {
	a.log.Info("Running...")
	defer a.log.Info("Stopped")

	snapshotEvents, _ := a.eb.Subscribe(ctx, events.TopicSnapshot, true)
	occupancyEvents, _ := a.eb.Subscribe(ctx, events.TopicOccupancy, true)
	preferenceEvents, _ := a.eb.Subscribe(ctx, events.TopicPreferences, true)

	for {
		select {
		case ev, ok := <-snapshotEvents:
			if !ok {
				return
			}
			a.handleSnapshot(ev.(events.SnapshotUpdate))

		case ev, ok := <-occupancyEvents:
			if !ok {
				return
			}
			a.handleOccupancy(ev.(events.OccupancyUpdate))

		case ev, ok := <-preferenceEvents:
			if !ok {
				return
			}
			a.handlePreferences(ev.(events.PreferencesUpdate))

		case <-ctx.Done():
			return
		}
	}
}

func (a *Advisor) handleSnapshot(ev events.SnapshotUpdate) {
	a.mu.Lock()
	a.snapshot = ev.Snapshot
	a.location = ev.Location
	a.hasSnapshot = true
	a.mu.Unlock()
	a.recalculate()
}

func (a *Advisor) handleOccupancy(ev events.OccupancyUpdate) {
	a.mu.Lock()
	a.occupied = ev.Occupied
	a.mu.Unlock()
	a.recalculate()
}

func (a *Advisor) handlePreferences(ev events.PreferencesUpdate) {
	if err := ev.Preferences.Validate(); err != nil {
		a.log.Error("ignoring preferences: %v", err)
		return
	}
	a.mu.Lock()
	a.prefs = ev.Preferences
	a.mu.Unlock()
	a.recalculate()
}

func (a *Advisor) recalculate() {
	a.mu.Lock()
	if !a.hasSnapshot {
		a.mu.Unlock()
		return
	}
	update := events.DecisionUpdate{
		Decision:    a.engine.Evaluate(a.snapshot, a.prefs, a.occupied),
		Snapshot:    a.snapshot,
		Preferences: a.prefs,
		Occupied:    a.occupied,
		Location:    a.location,
		Time:        time.Now(),
	}
	a.latest = update
	a.hasDecision = true
	a.mu.Unlock()

	d := update.Decision
	a.log.Info("%s %.1f°C %.0f%% aqi=%s -> %v", d.Band, update.Snapshot.TemperatureC,
		update.Snapshot.Humidity, update.Snapshot.AQI, d.States.Map())
	if d.Advisory != "" {
		a.log.Info("%s", d.Advisory)
	}
	a.eb.Publish(events.TopicDecision, update)
}
