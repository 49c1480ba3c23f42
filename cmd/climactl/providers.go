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
	"climactl/internal/config"
	"climactl/internal/weather"
	"climactl/pkg/modbus"
	"errors"
	"fmt"
	"time"
)

var errMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set (var/config/.env or environment)")

// newProvider builds the configured weather source. The returned func
// releases whatever the provider holds open.
func newProvider(conf *config.Config) (weather.Provider, func(), error) {
	nop := func() {}
	wc := conf.Weather

	switch wc.Provider {
	case config.ProviderOpenWeather:
		if conf.APIKey == "" {
			return nil, nop, errMissingAPIKey
		}
		timeout := time.Duration(wc.TimeoutSeconds) * time.Second
		return weather.NewOpenWeather(wc.BaseURL, conf.APIKey, wc.City, wc.Country, timeout), nop, nil

	case config.ProviderModbus:
		mbConf, err := modbus.LoadConfig(resolve(conf.RootDir, conf.Sensor.ModbusConfig))
		if err != nil {
			return nil, nop, err
		}
		client := modbus.NewClient(mbConf)
		sensor, err := weather.NewModbusSensor(client, mbConf)
		if err != nil {
			client.Close()
			return nil, nop, err
		}
		return sensor, client.Close, nil

	case config.ProviderManual:
		return weather.Manual{Snapshot: wc.Manual}, nop, nil
	}
	return nil, nop, fmt.Errorf("unknown provider %q", wc.Provider)
}
