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

// Package metrics exports the latest conditions and recommendations in
// the Prometheus text format.
package metrics

import (
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Service struct {
	eb  *eventbus.Bus
	reg *prometheus.Registry
	log *logger.Logger

	decisions   *prometheus.CounterVec
	deviceState *prometheus.GaugeVec
	temperature prometheus.Gauge
	humidity    prometheus.Gauge
	aqi         prometheus.Gauge
	aqiKnown    prometheus.Gauge
	occupied    prometheus.Gauge
	snapshots   prometheus.Counter
}

// New registers the collectors on a private registry, so several
// instances (tests) never collide.
func New(eb *eventbus.Bus) *Service {
	s := &Service{
		eb:  eb,
		reg: prometheus.NewRegistry(),
		log: logger.New("Metrics"),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "climactl_decisions_total",
			Help: "Evaluations published, by comfort band.",
		}, []string{"band"}),
		deviceState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "climactl_device_state",
			Help: "Recommended device state (0 off, 1 on or normal, 2 full).",
		}, []string{"device"}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "climactl_outdoor_temperature_celsius",
			Help: "Latest outdoor temperature.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "climactl_outdoor_humidity_percent",
			Help: "Latest outdoor relative humidity.",
		}),
		aqi: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "climactl_outdoor_aqi",
			Help: "Latest air quality index, when known.",
		}),
		aqiKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "climactl_outdoor_aqi_known",
			Help: "1 when the latest snapshot carried an air quality index.",
		}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "climactl_room_occupied",
			Help: "1 when the room is occupied.",
		}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climactl_snapshots_total",
			Help: "Accepted weather snapshots.",
		}),
	}

	s.reg.MustRegister(
		s.decisions,
		s.deviceState,
		s.temperature,
		s.humidity,
		s.aqi,
		s.aqiKnown,
		s.occupied,
		s.snapshots,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "climactl_eventbus_dropped_total",
			Help: "Events dropped because a subscriber lagged.",
		}, func() float64 { return float64(eb.Stats().Dropped) }),
	)
	return s
}

func (s *Service) Run(ctx context.Context) {
	s.log.Info("Running...")
	defer s.log.Info("Stopped")

	snapshotEvents, _ := s.eb.Subscribe(ctx, events.TopicSnapshot, true)
	occupancyEvents, _ := s.eb.Subscribe(ctx, events.TopicOccupancy, true)
	decisionEvents, _ := s.eb.Subscribe(ctx, events.TopicDecision, true)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-snapshotEvents:
			if !ok {
				return
			}
			s.observeSnapshot(ev.(events.SnapshotUpdate))
		case ev, ok := <-occupancyEvents:
			if !ok {
				return
			}
			s.occupied.Set(boolValue(ev.(events.OccupancyUpdate).Occupied))
		case ev, ok := <-decisionEvents:
			if !ok {
				return
			}
			s.observeDecision(ev.(events.DecisionUpdate))
		}
	}
}

func (s *Service) observeSnapshot(ev events.SnapshotUpdate) {
	s.snapshots.Inc()
	s.temperature.Set(ev.Snapshot.TemperatureC)
	s.humidity.Set(ev.Snapshot.Humidity)
	s.aqiKnown.Set(boolValue(ev.Snapshot.AQI.Known))
	if ev.Snapshot.AQI.Known {
		s.aqi.Set(float64(ev.Snapshot.AQI.Index))
	}
}

func (s *Service) observeDecision(ev events.DecisionUpdate) {
	d := ev.Decision
	s.decisions.WithLabelValues(string(d.Band)).Inc()
	s.deviceState.WithLabelValues("air_conditioner").Set(d.States.AirConditioner.Value())
	s.deviceState.WithLabelValues("heater").Set(d.States.Heater.Value())
	s.deviceState.WithLabelValues("humidifier").Set(d.States.Humidifier.Value())
	s.deviceState.WithLabelValues("dehumidifier").Set(d.States.Dehumidifier.Value())
	s.deviceState.WithLabelValues("air_purifier").Set(d.States.AirPurifier.Value())
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
