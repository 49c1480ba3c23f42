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

package main

import (
	"climactl/internal/climate"
	"climactl/internal/config"
	"climactl/internal/weather"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderOpenWeatherNeedsKey(t *testing.T) {
	conf := &config.Config{Weather: config.WeatherConfig{Provider: config.ProviderOpenWeather}}
	_, _, err := newProvider(conf)
	assert.ErrorIs(t, err, errMissingAPIKey)

	conf.APIKey = "k"
	p, closeFn, err := newProvider(conf)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "openweather", p.Name())
}

func TestNewProviderManual(t *testing.T) {
	snap := climate.Snapshot{TemperatureC: 18, Humidity: 40, AQI: climate.KnownAQI(30)}
	conf := &config.Config{Weather: config.WeatherConfig{Provider: config.ProviderManual, Manual: snap}}

	p, closeFn, err := newProvider(conf)
	require.NoError(t, err)
	defer closeFn()

	r, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap, r.Snapshot)
}

func TestNewProviderModbus(t *testing.T) {
	dir := t.TempDir()
	yml := `
modbus:
  host: 127.0.0.1
  slave_id: 1
registers:
  outdoor_temp:
    address: 0
    type: input
    data_type: int16
    scale: 0.1
  outdoor_humidity:
    address: 1
    type: input
    data_type: uint16
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sensor.yml"), []byte(yml), 0644))

	conf := &config.Config{
		RootDir: dir,
		Weather: config.WeatherConfig{Provider: config.ProviderModbus},
		Sensor:  config.SensorConfig{ModbusConfig: "sensor.yml"},
	}
	p, closeFn, err := newProvider(conf)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &weather.ModbusSensor{}, p)

	conf.Sensor.ModbusConfig = "missing.yml"
	_, _, err = newProvider(conf)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "/abs/rules.yml", resolve("/root", "/abs/rules.yml"))
	assert.Equal(t, filepath.Join("/root", "var/config/rules.yml"), resolve("/root", "var/config/rules.yml"))
}
