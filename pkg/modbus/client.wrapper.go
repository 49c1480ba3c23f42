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

package modbus

import (
	"climactl/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	wrapper "github.com/grid-x/modbus"
)

// RegisterReader is the part of a Modbus client the decoder needs.
type RegisterReader interface {
	ReadHoldingRegisters(ctx context.Context, addr, quantity uint16) ([]byte, error)
	ReadInputRegisters(ctx context.Context, addr, quantity uint16) ([]byte, error)
}

// Client is a reconnecting Modbus TCP client.
type Client struct {
	mu      sync.Mutex
	handler *wrapper.TCPClientHandler
	client  wrapper.Client
	config  *Config
	log     *logger.Logger
}

// NewClient returns an unconnected client; the first read connects.
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		log:    logger.New("ModbusConn"),
	}
}

func (c *Client) Config() *Config {
	return c.config
}

// connect (re)connects once. Caller holds c.mu.
func (c *Client) connect(ctx context.Context) error {
	if c.handler != nil {
		_ = c.handler.Close()
		c.handler = nil
		c.client = nil
	}

	url := fmt.Sprintf("%s:%d", c.config.Modbus.Host, c.config.Modbus.Port)
	handler := wrapper.NewTCPClientHandler(url)
	handler.SlaveID = c.config.Modbus.SlaveID
	handler.Timeout = time.Second * time.Duration(c.config.Modbus.Timeout)
	handler.ProtocolRecoveryTimeout = 250 * time.Millisecond
	handler.LinkRecoveryTimeout = 5 * time.Second

	c.log.Info("Connecting to %s...", url)
	if err := handler.Connect(ctx); err != nil {
		return fmt.Errorf("modbus connect failed: %w", err)
	}

	c.handler = handler
	c.client = wrapper.NewClient(handler)
	c.log.Info("Connected to %s", url)
	return nil
}

// do runs op with a connected client, reconnecting once on a
// connection error.
func (c *Client) do(ctx context.Context, op func(wrapper.Client) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if c.client == nil {
			if err = c.connect(ctx); err != nil {
				return nil, err
			}
		}
		var data []byte
		data, err = op(c.client)
		if err == nil {
			return data, nil
		}
		if !isConnError(err) {
			return nil, err
		}
		c.log.Error("connection error: %v, reconnecting", err)
		_ = c.handler.Close()
		c.handler = nil
		c.client = nil
	}
	return nil, err
}

func (c *Client) ReadHoldingRegisters(ctx context.Context, addr, quantity uint16) ([]byte, error) {
	return c.do(ctx, func(cl wrapper.Client) ([]byte, error) {
		return cl.ReadHoldingRegisters(ctx, addr, quantity)
	})
}

func (c *Client) ReadInputRegisters(ctx context.Context, addr, quantity uint16) ([]byte, error) {
	return c.do(ctx, func(cl wrapper.Client) ([]byte, error) {
		return cl.ReadInputRegisters(ctx, addr, quantity)
	})
}

// Close closes the underlying handler.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler != nil {
		_ = c.handler.Close()
		c.handler = nil
		c.client = nil
	}
}

func isConnError(err error) bool {
	if err == nil {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "closed by the remote host") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection refused")
}
