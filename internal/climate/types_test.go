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

package climate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSON(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"temperature_c":21.5,"humidity":40,"aqi":null}`), &s))
	assert.Equal(t, 21.5, s.TemperatureC)
	assert.False(t, s.AQI.Known)

	require.NoError(t, json.Unmarshal([]byte(`{"temperature_c":21.5,"humidity":40}`), &s))
	assert.False(t, s.AQI.Known)

	require.NoError(t, json.Unmarshal([]byte(`{"temperature_c":21.5,"humidity":40,"aqi":42}`), &s))
	assert.Equal(t, KnownAQI(42), s.AQI)

	assert.Error(t, json.Unmarshal([]byte(`{"aqi":-3}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"aqi":"bad"}`), &s))

	out, err := json.Marshal(Snapshot{TemperatureC: 1, Humidity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"temperature_c":1,"humidity":2,"aqi":null}`, string(out))
}

func TestAirQualityString(t *testing.T) {
	assert.Equal(t, "N/A", UnknownAQI.String())
	assert.Equal(t, "87", KnownAQI(87).String())
}

func TestDeviceStatesValues(t *testing.T) {
	d := AllOff()
	d.Heater = HeaterFull
	d.AirPurifier = On
	assert.Equal(t, map[string]string{
		"air_conditioner": "OFF",
		"heater":          "FULL",
		"humidifier":      "OFF",
		"dehumidifier":    "OFF",
		"air_purifier":    "ON",
	}, d.Map())
	assert.Equal(t, 2.0, d.Heater.Value())
	assert.Equal(t, 1.0, d.AirPurifier.Value())
	assert.Equal(t, 0.0, d.Humidifier.Value())
	assert.Equal(t, 1.0, HeaterNormal.Value())
}

func TestPreferencesJSONBounds(t *testing.T) {
	cases := map[string]string{
		"ac below range": `{"ac_threshold_c": -100, "aqi_threshold": 100, "comfort_range": {"min_c": 20, "max_c": 26}}`,
		"ac above range": `{"ac_threshold_c": 1e300, "aqi_threshold": 100, "comfort_range": {"min_c": 20, "max_c": 26}}`,
		"aqi above 500":  `{"ac_threshold_c": 27, "aqi_threshold": 9000, "comfort_range": {"min_c": 20, "max_c": 26}}`,
		"comfort range":  `{"ac_threshold_c": 27, "aqi_threshold": 100, "comfort_range": {"min_c": 20, "max_c": 900}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var p Preferences
			require.NoError(t, json.Unmarshal([]byte(body), &p))
			assert.Error(t, p.Validate())
		})
	}

	var p Preferences
	require.NoError(t, json.Unmarshal([]byte(`{"ac_threshold_c": 27, "aqi_threshold": 100, "comfort_range": {"min_c": 20, "max_c": 26}}`), &p))
	assert.NoError(t, p.Validate())
}
