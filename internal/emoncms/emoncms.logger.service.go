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

package emoncms

import (
	"climactl/internal/config"
	"climactl/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Node is the EmonCMS input node the advisor data is posted under.
const Node = "climactl"

// Source supplies one node's numeric inputs.
type Source interface {
	GetData() map[string]float64
}

type LoggerService struct {
	addr     string
	apiKey   string
	interval time.Duration
	client   *http.Client
	log      *logger.Logger
	sources  map[string]Source
}

func New(advisor Source, conf config.DataLoggerConfig) *LoggerService {
	return &LoggerService{
		addr:     strings.TrimRight(conf.EmonCMSAddr, "/"),
		apiKey:   conf.EmonCMSApiKey,
		interval: time.Duration(conf.IntervalSeconds) * time.Second,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger.New("DataLogger"),
		sources:  map[string]Source{Node: advisor},
	}
}

func (c *LoggerService) inputPost(ctx context.Context, node string, data map[string]float64) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	q := url.Values{}
	q.Set("node", node)
	q.Set("apikey", c.apiKey)
	q.Set("fulljson", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addr+"/input/post?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("input/post: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("input/post: status %d", resp.StatusCode)
	}
	return nil
}

func (c *LoggerService) tick(ctx context.Context) {
	for node, src := range c.sources {
		data := src.GetData()
		if len(data) == 0 {
			c.log.Debug("%s: nothing to post yet", node)
			continue
		}
		if err := c.inputPost(ctx, node, data); err != nil {
			c.log.Error("%s: %v", node, err)
		}
	}
}

func (c *LoggerService) Run(ctx context.Context) {
	c.log.Info("Running...")
	defer c.log.Info("Stopped.")

	tick := time.NewTicker(c.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			c.tick(ctx)
		}
	}
}
