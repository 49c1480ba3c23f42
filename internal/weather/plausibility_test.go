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

package weather

import (
	"climactl/internal/climate"
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReading(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	prev := &Entry{Time: now.Add(-5 * time.Minute), TemperatureC: 20}

	tests := []struct {
		name string
		prev *Entry
		snap climate.Snapshot
		ok   bool
	}{
		{"normal", prev, climate.Snapshot{TemperatureC: 22, Humidity: 50}, true},
		{"first reading", nil, climate.Snapshot{TemperatureC: 45, Humidity: 10}, true},
		{"nan", nil, climate.Snapshot{TemperatureC: math.NaN(), Humidity: 10}, false},
		{"too cold", nil, climate.Snapshot{TemperatureC: -61, Humidity: 10}, false},
		{"too hot", nil, climate.Snapshot{TemperatureC: 61, Humidity: 10}, false},
		{"humidity", nil, climate.Snapshot{TemperatureC: 20, Humidity: 101}, false},
		{"spike", prev, climate.Snapshot{TemperatureC: 36, Humidity: 50}, false},
		{"slow change", &Entry{Time: now.Add(-time.Hour), TemperatureC: 20}, climate.Snapshot{TemperatureC: 36, Humidity: 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkReading(tt.prev, tt.snap, now)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, KindImplausible, fe.Kind)
			assert.Contains(t, fe.Error(), "Rejected weather data")
		})
	}
}

func TestServiceRejectsSpike(t *testing.T) {
	bus := eventbus.New()
	prov := &scriptedProvider{readings: []Reading{
		{Snapshot: climate.Snapshot{TemperatureC: 18, Humidity: 50}},
		{Snapshot: climate.Snapshot{TemperatureC: 48, Humidity: 50}},
	}}
	svc := New(prov, bus, time.Minute)
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.Refresh(context.Background()))

	svc.now = func() time.Time { return base.Add(time.Minute) }
	assert.Error(t, svc.Refresh(context.Background()))

	ev, _ := eventbus.Last[events.SnapshotUpdate](bus, events.TopicSnapshot)
	assert.Equal(t, 18.0, ev.Snapshot.TemperatureC)
	assert.Len(t, svc.History(), 1)
	assert.Contains(t, svc.Status().LastError, "changed too fast")
}
