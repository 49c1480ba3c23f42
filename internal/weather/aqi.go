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

import "math"

// pm25Breakpoints maps 24h PM2.5 concentrations (µg/m³) onto the US EPA
// 0..500 index.
var pm25Breakpoints = []struct {
	concLo, concHi float64
	aqiLo, aqiHi   int
}{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// aqiFromPM25 converts a PM2.5 concentration to the 0..500 index.
// Concentrations past the table are capped at 500.
func aqiFromPM25(pm float64) (int, bool) {
	if math.IsNaN(pm) || math.IsInf(pm, 0) || pm < 0 {
		return 0, false
	}
	// truncate to one decimal, as the breakpoint table expects
	c := math.Floor(pm*10+1e-9) / 10
	for _, bp := range pm25Breakpoints {
		if c <= bp.concHi {
			frac := (c - bp.concLo) / (bp.concHi - bp.concLo)
			return bp.aqiLo + int(math.Round(frac*float64(bp.aqiHi-bp.aqiLo))), true
		}
	}
	return 500, true
}

// aqiFromCategory maps the OpenWeatherMap 1..5 category onto the upper
// edge of the matching 0..500 band.
func aqiFromCategory(cat int) (int, bool) {
	switch cat {
	case 1:
		return 50, true
	case 2:
		return 100, true
	case 3:
		return 150, true
	case 4:
		return 200, true
	case 5:
		return 300, true
	}
	return 0, false
}
