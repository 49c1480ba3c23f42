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
	"errors"
	"fmt"
	"math"
	"time"
)

// Limits for accepting a reading. A sensor glitch or a bad upstream
// record should not flip every device.
const (
	minPlausibleTempC = -60.0
	maxPlausibleTempC = 60.0
	maxTempStepC      = 15.0
	maxStepInterval   = 8 * time.Minute
)

// checkReading rejects values no outdoor sensor reports and temperature
// jumps too large for the time since the previous accepted reading.
func checkReading(prev *Entry, s climate.Snapshot, now time.Time) error {
	var err error
	switch {
	case math.IsNaN(s.TemperatureC) || math.IsNaN(s.Humidity):
		err = errors.New("missing value")
	case s.TemperatureC < minPlausibleTempC:
		err = fmt.Errorf("air temp too low: %.1f°C", s.TemperatureC)
	case s.TemperatureC > maxPlausibleTempC:
		err = fmt.Errorf("air temp too high: %.1f°C", s.TemperatureC)
	case s.Humidity < 0 || s.Humidity > 100:
		err = fmt.Errorf("humidity out of range: %.0f%%", s.Humidity)
	case prev != nil:
		delta := math.Abs(s.TemperatureC - prev.TemperatureC)
		dt := now.Sub(prev.Time)
		if dt < maxStepInterval && delta > maxTempStepC {
			err = fmt.Errorf("air temp changed too fast: Δ%.1f°C in %v", delta, dt.Truncate(time.Second))
		}
	}
	if err != nil {
		return &FetchError{Service: "weather", Kind: KindImplausible, Err: err}
	}
	return nil
}
