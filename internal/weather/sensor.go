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

package weather

import (
	"climactl/internal/climate"
	"climactl/pkg/logger"
	"climactl/pkg/modbus"
	"context"
	"fmt"
	"math"
)

// Register names the outdoor sensor map must (or may, for aqi) define.
const (
	RegOutdoorTemp     = "outdoor_temp"
	RegOutdoorHumidity = "outdoor_humidity"
	RegAQI             = "aqi"
)

// ModbusSensor reads a local outdoor temperature/humidity/AQI sensor.
type ModbusSensor struct {
	regs     *modbus.Registers
	location string
	log      *logger.Logger
}

func NewModbusSensor(reader modbus.RegisterReader, conf *modbus.Config) (*ModbusSensor, error) {
	for _, name := range []string{RegOutdoorTemp, RegOutdoorHumidity} {
		if _, ok := conf.Registers[name]; !ok {
			return nil, fmt.Errorf("modbus sensor: register %q not configured", name)
		}
	}
	return &ModbusSensor{
		regs:     modbus.NewRegisters(reader, conf.Registers),
		location: fmt.Sprintf("modbus://%s:%d/%d", conf.Modbus.Host, conf.Modbus.Port, conf.Modbus.SlaveID),
		log:      logger.New("ModbusSensor"),
	}, nil
}

func (s *ModbusSensor) Name() string { return "modbus" }

func (s *ModbusSensor) Fetch(ctx context.Context) (Reading, error) {
	temp, err := s.regs.ReadFloat(ctx, RegOutdoorTemp)
	if err != nil {
		return Reading{}, &FetchError{Service: "weather", Kind: KindTransport, Err: err}
	}
	if err := checkOutdoorTemp(temp); err != nil {
		return Reading{}, &FetchError{Service: "weather", Kind: KindDecode, Err: err}
	}
	hum, err := s.regs.ReadFloat(ctx, RegOutdoorHumidity)
	if err != nil {
		return Reading{}, &FetchError{Service: "weather", Kind: KindTransport, Err: err}
	}
	if hum < 0 || hum > 100 {
		return Reading{}, &FetchError{Service: "weather", Kind: KindDecode, Err: fmt.Errorf("humidity %.1f%% out of range", hum)}
	}

	aqi := climate.UnknownAQI
	if s.regs.Has(RegAQI) {
		v, err := s.regs.ReadFloat(ctx, RegAQI)
		if err == nil && v >= 0 {
			aqi = climate.KnownAQI(int(math.Round(v)))
		} else {
			s.log.Warn("aqi read: %v (value %v)", err, v)
		}
	}

	return Reading{
		Snapshot: climate.Snapshot{TemperatureC: temp, Humidity: hum, AQI: aqi},
		Source:   s.Name(),
		Location: s.location,
	}, nil
}

// checkOutdoorTemp rejects readings a working sensor cannot produce.
func checkOutdoorTemp(c float64) error {
	if math.IsNaN(c) {
		return fmt.Errorf("air temp is not a number")
	}
	if c < -50 {
		return fmt.Errorf("air temp too low: %.1f°C", c)
	}
	if c > 50 {
		return fmt.Errorf("air temp too high: %.1f°C", c)
	}
	return nil
}
