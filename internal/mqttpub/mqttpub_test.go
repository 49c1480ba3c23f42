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

package mqttpub

import (
	"climactl/internal/climate"
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUpdate() events.DecisionUpdate {
	return events.DecisionUpdate{
		Decision: climate.Decision{
			Band: climate.Hot,
			States: climate.DeviceStates{
				AirConditioner: climate.On,
				Heater:         climate.HeaterOff,
				Humidifier:     climate.Off,
				Dehumidifier:   climate.On,
				AirPurifier:    climate.Off,
			},
		},
		Snapshot: climate.Snapshot{TemperatureC: 33.2, Humidity: 71, AQI: climate.UnknownAQI},
		Occupied: true,
		Location: "Chennai, IN",
		Time:     time.Date(2025, 6, 1, 14, 30, 0, 0, time.FixedZone("IST", 5*3600+1800)),
	}
}

func TestFormatPayload(t *testing.T) {
	data, err := FormatPayload(sampleUpdate())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2025-06-01T09:00:00Z", got["time"])
	assert.Equal(t, "hot", got["band"])
	assert.Equal(t, true, got["occupied"])
	assert.Equal(t, "Chennai, IN", got["location"])
	assert.NotContains(t, got, "advisory")

	states := got["states"].(map[string]any)
	assert.Equal(t, "ON", states["air_conditioner"])
	assert.Equal(t, "OFF", states["heater"])
	assert.Equal(t, "ON", states["dehumidifier"])

	snap := got["snapshot"].(map[string]any)
	assert.Equal(t, 33.2, snap["temperature_c"])
	assert.Nil(t, snap["aqi"])
}

func TestServiceForwardsDecisions(t *testing.T) {
	bus := eventbus.New()
	pub := NewFakePublisher()
	svc := NewService(bus, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	bus.Publish(events.TopicDecision, sampleUpdate())
	assert.Eventually(t, func() bool { return len(pub.Payloads()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.True(t, pub.Closed())
}

func TestServiceSurvivesPublishErrors(t *testing.T) {
	bus := eventbus.New()
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	svc := NewService(bus, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	bus.Publish(events.TopicDecision, sampleUpdate())
	bus.Publish(events.TopicDecision, sampleUpdate())
	cancel()
	<-done
	assert.Empty(t, pub.Payloads())
}
