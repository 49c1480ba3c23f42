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

package config

import (
	"climactl/internal/climate"
	"climactl/pkg/eventbus"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderModbus      = "modbus"
	ProviderManual      = "manual"

	OccupancyManual    = "manual"
	OccupancySimulated = "simulated"
)

type HTTPConfig struct {
	Addr string `json:"addr"`
}

type WeatherConfig struct {
	Provider string `json:"provider"`

	// openweather
	City    string `json:"city"`
	Country string `json:"country"`
	BaseURL string `json:"base_url"`

	// manual: a fixed snapshot, e.g. for a demo or bench test
	Manual climate.Snapshot `json:"manual"`

	PollIntervalSeconds int `json:"poll_interval_seconds"`
	TimeoutSeconds      int `json:"timeout_seconds"`
}

type SensorConfig struct {
	// YAML register map of the outdoor Modbus sensor
	ModbusConfig string `json:"modbus_config"`
}

type OccupancyConfig struct {
	Mode            string  `json:"mode"`
	Occupied        *bool   `json:"occupied"`
	IntervalSeconds int     `json:"interval_seconds"`
	Probability     float64 `json:"probability"`
}

type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type DataLoggerConfig struct {
	EmonCMSAddr     string `json:"emoncms_addr"`
	EmonCMSApiKey   string `json:"emoncms_apikey"`
	IntervalSeconds int    `json:"interval_seconds"`
}

type RulesConfig struct {
	File string `json:"file"`
}

type Config struct {
	HTTP       HTTPConfig       `json:"http"`
	Weather    WeatherConfig    `json:"weather"`
	Sensor     SensorConfig     `json:"sensor"`
	Occupancy  OccupancyConfig  `json:"occupancy"`
	MQTT       MQTTConfig       `json:"mqtt"`
	DataLogger DataLoggerConfig `json:"datalogger"`
	Rules      RulesConfig      `json:"rules"`

	// not loaded from file, but added here to
	// pass to all services alongside config
	EventBus *eventbus.Bus `json:"-"`
	RootDir  string        `json:"-"`
	APIKey   string        `json:"-"`
}

// LoadFile loads and validates the app config, exiting on failure.
func LoadFile(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Weather.Provider == "" {
		c.Weather.Provider = ProviderOpenWeather
	}
	if c.Weather.City == "" {
		c.Weather.City = "London"
	}
	if c.Weather.Country == "" {
		c.Weather.Country = "UK"
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api.openweathermap.org"
	}
	if c.Weather.PollIntervalSeconds == 0 {
		c.Weather.PollIntervalSeconds = 600
	}
	if c.Weather.TimeoutSeconds == 0 {
		c.Weather.TimeoutSeconds = 10
	}
	if c.Sensor.ModbusConfig == "" {
		c.Sensor.ModbusConfig = "var/config/sensor.modbus.yml"
	}
	if c.Occupancy.Mode == "" {
		c.Occupancy.Mode = OccupancyManual
	}
	if c.Occupancy.IntervalSeconds == 0 {
		c.Occupancy.IntervalSeconds = 300
	}
	if c.Occupancy.Probability == 0 {
		c.Occupancy.Probability = 0.5
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "climactl"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "climactl/decision"
	}
	if c.DataLogger.IntervalSeconds == 0 {
		c.DataLogger.IntervalSeconds = 60
	}
	if c.Rules.File == "" {
		c.Rules.File = "var/config/rules.yml"
	}
}

// InitiallyOccupied is the occupancy before anyone says otherwise.
func (c OccupancyConfig) InitiallyOccupied() bool {
	return c.Occupied == nil || *c.Occupied
}

func (c *Config) Validate() error {
	switch c.Weather.Provider {
	case ProviderOpenWeather, ProviderModbus, ProviderManual:
	default:
		return fmt.Errorf("config: unknown weather provider %q", c.Weather.Provider)
	}
	if c.Weather.PollIntervalSeconds < 0 || c.Weather.TimeoutSeconds < 0 {
		return fmt.Errorf("config: weather intervals must not be negative")
	}
	switch c.Occupancy.Mode {
	case OccupancyManual, OccupancySimulated:
	default:
		return fmt.Errorf("config: unknown occupancy mode %q", c.Occupancy.Mode)
	}
	if c.Occupancy.Probability < 0 || c.Occupancy.Probability > 1 {
		return fmt.Errorf("config: occupancy probability %v outside 0..1", c.Occupancy.Probability)
	}
	return nil
}
