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
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"context"
)

// Service forwards every decision on the bus to the broker.
type Service struct {
	eb  *eventbus.Bus
	pub Publisher
	log *logger.Logger
}

func NewService(eb *eventbus.Bus, pub Publisher) *Service {
	return &Service{eb: eb, pub: pub, log: logger.New("MQTT")}
}

func (s *Service) Run(ctx context.Context) {
	s.log.Info("Running...")
	defer s.log.Info("Stopped")
	defer func() {
		if err := s.pub.Close(); err != nil {
			s.log.Warn("close: %v", err)
		}
	}()

	decisions, _ := s.eb.Subscribe(ctx, events.TopicDecision, true)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-decisions:
			if !ok {
				return
			}
			if err := s.pub.Publish(ev.(events.DecisionUpdate)); err != nil {
				s.log.Error("publish: %v", err)
			}
		}
	}
}
