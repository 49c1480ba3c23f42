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
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Slider bounds for preference edits.
const (
	MinACThresholdC  = 20.0
	MaxACThresholdC  = 35.0
	MinAQIThreshold  = 50
	MaxAQIThreshold  = 300
	clientQueueDepth = 8
)

// Advisor is the part of the advisor the panel reads from.
type Advisor interface {
	Latest() (events.DecisionUpdate, bool)
	Preferences() climate.Preferences
	Engine() *climate.Engine
}

type Occupancy interface {
	Occupied() bool
	Toggle() bool
}

type Panel struct {
	eb          *eventbus.Bus
	advisor     Advisor
	occupancy   Occupancy
	clients     *clientSet
	clientQueue chan Request
	log         *logger.Logger

	mu    sync.Mutex
	prefs climate.Preferences

	httpHandler http.Handler
}

func New(eb *eventbus.Bus, advisor Advisor, occupancy Occupancy) *Panel {
	p := &Panel{
		eb:          eb,
		advisor:     advisor,
		occupancy:   occupancy,
		clients:     newClientSet(),
		clientQueue: make(chan Request, clientQueueDepth),
		prefs:       advisor.Preferences(),
		log:         logger.New("Panel"),
	}
	p.httpHandler = p.buildHTTPHandler()
	return p
}

func (p *Panel) Run(ctx context.Context) {
	p.log.Info("Running...")
	defer p.log.Info("Stopped")
	defer p.clients.closeAll()

	decisions, _ := p.eb.Subscribe(ctx, events.TopicDecision, false)

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-decisions:
			if !ok {
				return
			}

		case req := <-p.clientQueue:
			p.log.Debug("msg from client: %+v", req)
			if err := p.handle(req); err != nil {
				p.log.Warn("%s: %v", req.Command, err)
				continue
			}
			if _, decided := p.advisor.Latest(); decided && req.Command != "broadcast" {
				// the resulting decision triggers the broadcast
				continue
			}
		}

		go p.clients.broadcast(p.state(), p.log)
	}
}

// handle applies one client command. Preference edits are published
// and picked up by the advisor.
func (p *Panel) handle(req Request) error {
	switch req.Command {
	case "broadcast":
		return nil
	case "toggle_occupancy":
		p.occupancy.Toggle()
		return nil
	case "change_ac_threshold":
		return p.updatePreferences(func(next *climate.Preferences) {
			next.ACThresholdC = clampFloat(next.ACThresholdC+req.Delta, MinACThresholdC, MaxACThresholdC)
		})
	case "change_aqi_threshold":
		return p.updatePreferences(func(next *climate.Preferences) {
			next.AQIThreshold = clampInt(next.AQIThreshold+int(req.Delta), MinAQIThreshold, MaxAQIThreshold)
		})
	case "apply_recommended":
		return p.updatePreferences(func(next *climate.Preferences) {
			*next = climate.RecommendedPreferences()
		})
	}
	return fmt.Errorf("unknown command %q", req.Command)
}

func (p *Panel) updatePreferences(edit func(*climate.Preferences)) error {
	p.mu.Lock()
	next := p.prefs
	edit(&next)
	if err := next.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.prefs = next
	p.mu.Unlock()

	p.log.Info("preferences: ac>%.1f°C aqi>%d range %.0f..%.0f°C",
		next.ACThresholdC, next.AQIThreshold, next.ComfortRange.MinC, next.ComfortRange.MaxC)
	p.eb.Publish(events.TopicPreferences, events.PreferencesUpdate{
		Preferences: next,
		Time:        time.Now(),
	})
	return nil
}

func clampFloat(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// withinSliders rejects preferences the panel controls could not produce.
func withinSliders(pr climate.Preferences) error {
	if pr.ACThresholdC < MinACThresholdC || pr.ACThresholdC > MaxACThresholdC {
		return &climate.ConfigError{
			Field:  "ac_threshold_c",
			Reason: fmt.Sprintf("%v is outside %.0f..%.0f", pr.ACThresholdC, MinACThresholdC, MaxACThresholdC),
		}
	}
	if pr.AQIThreshold < MinAQIThreshold || pr.AQIThreshold > MaxAQIThreshold {
		return &climate.ConfigError{
			Field:  "aqi_threshold",
			Reason: fmt.Sprintf("%d is outside %d..%d", pr.AQIThreshold, MinAQIThreshold, MaxAQIThreshold),
		}
	}
	return nil
}

func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.httpHandler.ServeHTTP(w, r)
}
