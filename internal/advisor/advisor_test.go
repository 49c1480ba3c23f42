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
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var prefs = climate.Preferences{
	ACThresholdC: 28,
	AQIThreshold: 100,
	ComfortRange: climate.ComfortRange{MinC: 20, MaxC: 26},
}

func newAdvisor(t *testing.T, bus *eventbus.Bus) *Advisor {
	t.Helper()
	engine, err := climate.NewEngine(climate.DefaultThresholds())
	require.NoError(t, err)
	return New(bus, engine, prefs, true)
}

func startAdvisor(t *testing.T, a *Advisor) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go a.Run(ctx)
}

func waitDecision(t *testing.T, bus *eventbus.Bus, match func(events.DecisionUpdate) bool) events.DecisionUpdate {
	t.Helper()
	var got events.DecisionUpdate
	require.Eventually(t, func() bool {
		ev, ok := eventbus.Last[events.DecisionUpdate](bus, events.TopicDecision)
		if ok && match(ev) {
			got = ev
			return true
		}
		return false
	}, time.Second, 5*time.Millisecond)
	return got
}

func TestNoDecisionWithoutSnapshot(t *testing.T) {
	bus := eventbus.New()
	a := newAdvisor(t, bus)
	a.handleOccupancy(events.OccupancyUpdate{Occupied: false})

	_, ok := a.Latest()
	assert.False(t, ok)
	assert.Empty(t, a.GetData())
	_, ok = bus.GetLast(events.TopicDecision)
	assert.False(t, ok)
}

func TestDecisionFollowsInputs(t *testing.T) {
	bus := eventbus.New()
	a := newAdvisor(t, bus)
	startAdvisor(t, a)

	bus.Publish(events.TopicSnapshot, events.SnapshotUpdate{
		Snapshot: climate.Snapshot{TemperatureC: 32, Humidity: 65, AQI: climate.KnownAQI(150)},
		Location: "Delhi, IN",
	})

	d := waitDecision(t, bus, func(d events.DecisionUpdate) bool { return d.Occupied })
	assert.Equal(t, climate.Hot, d.Decision.Band)
	assert.Equal(t, climate.On, d.Decision.States.AirConditioner)
	assert.Equal(t, climate.On, d.Decision.States.Dehumidifier)
	assert.Equal(t, climate.On, d.Decision.States.AirPurifier)
	assert.Equal(t, "Delhi, IN", d.Location)

	bus.Publish(events.TopicOccupancy, events.OccupancyUpdate{Occupied: false})
	d = waitDecision(t, bus, func(d events.DecisionUpdate) bool { return !d.Occupied })
	assert.Equal(t, climate.AllOff(), d.Decision.States)
	assert.Equal(t, climate.AdvisoryVacant, d.Decision.Advisory)

	data := a.GetData()
	assert.Equal(t, 0.0, data["air_conditioner"])
	assert.Equal(t, 0.0, data["occupied"])
	assert.Equal(t, 150.0, data["aqi"])
}

func TestPreferencesUpdate(t *testing.T) {
	bus := eventbus.New()
	a := newAdvisor(t, bus)
	startAdvisor(t, a)

	bus.Publish(events.TopicSnapshot, events.SnapshotUpdate{
		Snapshot: climate.Snapshot{TemperatureC: 27, Humidity: 50, AQI: climate.UnknownAQI},
	})
	d := waitDecision(t, bus, func(events.DecisionUpdate) bool { return true })
	assert.Equal(t, climate.Off, d.Decision.States.AirConditioner)

	lower := prefs
	lower.ACThresholdC = 25
	bus.Publish(events.TopicPreferences, events.PreferencesUpdate{Preferences: lower})

	d = waitDecision(t, bus, func(d events.DecisionUpdate) bool { return d.Preferences.ACThresholdC == 25 })
	assert.Equal(t, climate.On, d.Decision.States.AirConditioner)
	assert.Equal(t, lower, a.Preferences())

	_, hasAQI := a.GetData()["aqi"]
	assert.False(t, hasAQI)
}

func TestInvalidPreferencesIgnored(t *testing.T) {
	a := newAdvisor(t, eventbus.New())
	bad := prefs
	bad.ComfortRange = climate.ComfortRange{MinC: 30, MaxC: 10}
	a.handlePreferences(events.PreferencesUpdate{Preferences: bad})
	assert.Equal(t, prefs, a.Preferences())
}

func TestInvalidPreferencesOnBusKeepDecision(t *testing.T) {
	bus := eventbus.New()
	a := newAdvisor(t, bus)
	startAdvisor(t, a)

	bus.Publish(events.TopicSnapshot, events.SnapshotUpdate{
		Snapshot: climate.Snapshot{TemperatureC: 29, Humidity: 50, AQI: climate.KnownAQI(40)},
	})
	before := waitDecision(t, bus, func(events.DecisionUpdate) bool { return true })
	assert.Equal(t, climate.On, before.Decision.States.AirConditioner)

	bad := prefs
	bad.ACThresholdC = math.Inf(1)
	bus.Publish(events.TopicPreferences, events.PreferencesUpdate{Preferences: bad})

	assert.Never(t, func() bool {
		ev, _ := eventbus.Last[events.DecisionUpdate](bus, events.TopicDecision)
		return a.Preferences() != prefs || !ev.Time.Equal(before.Time)
	}, 100*time.Millisecond, 5*time.Millisecond)

	// the next snapshot is still judged against the old preferences
	bus.Publish(events.TopicSnapshot, events.SnapshotUpdate{
		Snapshot: climate.Snapshot{TemperatureC: 31, Humidity: 50, AQI: climate.KnownAQI(40)},
	})
	after := waitDecision(t, bus, func(d events.DecisionUpdate) bool { return d.Snapshot.TemperatureC == 31 })
	assert.Equal(t, prefs, after.Preferences)
	assert.Equal(t, climate.On, after.Decision.States.AirConditioner)
}
