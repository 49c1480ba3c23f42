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

package occupancy

import (
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Service owns the occupancy flag. It is set by hand (panel, HTTP) or,
// when a Simulator is attached, redrawn every interval.
type Service struct {
	eb       *eventbus.Bus
	sim      *Simulator
	interval time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	occupied bool
}

type State struct {
	Occupied  bool `json:"occupied"`
	Simulated bool `json:"simulated"`
}

func New(eb *eventbus.Bus, initial bool) *Service {
	return &Service{
		eb:       eb,
		occupied: initial,
		log:      logger.New("Occupancy"),
	}
}

// WithSimulator switches the service to simulated occupancy.
func (s *Service) WithSimulator(sim *Simulator, interval time.Duration) *Service {
	s.sim = sim
	s.interval = interval
	return s
}

func (s *Service) Run(ctx context.Context) {
	s.log.Info("Running (simulated=%v)", s.sim != nil)
	defer s.log.Info("Stopped")

	s.publish()

	if s.sim == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Set(s.sim.Next())
		}
	}
}

func (s *Service) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupied
}

func (s *Service) Set(occupied bool) {
	s.mu.Lock()
	changed := s.occupied != occupied
	s.occupied = occupied
	s.mu.Unlock()

	if changed {
		s.log.Info("occupied=%v", occupied)
	}
	s.publish()
}

// Toggle flips the flag and returns the new value.
func (s *Service) Toggle() bool {
	s.mu.Lock()
	s.occupied = !s.occupied
	v := s.occupied
	s.mu.Unlock()

	s.log.Info("occupied=%v (toggled)", v)
	s.publish()
	return v
}

func (s *Service) publish() {
	s.eb.Publish(events.TopicOccupancy, events.OccupancyUpdate{
		Occupied:  s.Occupied(),
		Simulated: s.sim != nil,
		Time:      time.Now(),
	})
}

func (s *Service) state() State {
	return State{Occupied: s.Occupied(), Simulated: s.sim != nil}
}

// ServeHTTP: GET / returns the state, POST /toggle flips it and
// POST / with {"occupied": bool} sets it.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/toggle" && r.Method == http.MethodPost:
		s.Toggle()
	case (r.URL.Path == "/" || r.URL.Path == "") && r.Method == http.MethodPost:
		var req struct {
			Occupied *bool `json:"occupied"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Occupied == nil {
			http.Error(w, `expected {"occupied": true|false}`, http.StatusBadRequest)
			return
		}
		s.Set(*req.Occupied)
	case (r.URL.Path == "/" || r.URL.Path == "") && r.Method == http.MethodGet:
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.state())
}
