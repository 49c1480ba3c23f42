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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// OpenWeather reads current conditions and the air pollution index from
// the OpenWeatherMap 2.5 API.
type OpenWeather struct {
	baseURL string
	apiKey  string
	city    string
	country string
	client  *http.Client
	log     *logger.Logger
}

func NewOpenWeather(baseURL, apiKey, city, country string, timeout time.Duration) *OpenWeather {
	return &OpenWeather{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		city:    city,
		country: country,
		client:  &http.Client{Timeout: timeout},
		log:     logger.New("OpenWeather"),
	}
}

func (o *OpenWeather) Name() string { return "openweather" }

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

type pollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			PM25 *float64 `json:"pm2_5"`
		} `json:"components"`
	} `json:"list"`
}

// Fetch returns a *FetchError when the weather call fails. A failed air
// quality call only leaves the AQI unknown.
func (o *OpenWeather) Fetch(ctx context.Context) (Reading, error) {
	var cur currentResponse
	q := url.Values{
		"q":     {o.city + "," + o.country},
		"units": {"metric"},
	}
	if err := o.get(ctx, "weather", "/data/2.5/weather", q, &cur); err != nil {
		return Reading{}, err
	}
	if cur.Main.Temp == nil || cur.Main.Humidity == nil {
		return Reading{}, &FetchError{Service: "weather", Kind: KindDecode, Err: errors.New("missing temperature or humidity")}
	}

	r := Reading{
		Snapshot: climate.Snapshot{
			TemperatureC: *cur.Main.Temp,
			Humidity:     *cur.Main.Humidity,
			AQI:          climate.UnknownAQI,
		},
		Source:    o.Name(),
		Location:  cur.Name,
		Latitude:  cur.Coord.Lat,
		Longitude: cur.Coord.Lon,
	}

	aqi, err := o.AirQuality(ctx, r.Latitude, r.Longitude)
	if err != nil {
		o.log.Warn("%v (continuing without air quality)", err)
	} else {
		r.Snapshot.AQI = climate.KnownAQI(aqi)
	}
	return r, nil
}

// AirQuality returns the 0..500 index for a coordinate.
func (o *OpenWeather) AirQuality(ctx context.Context, lat, lon float64) (int, error) {
	var pol pollutionResponse
	q := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	if err := o.get(ctx, "air quality", "/data/2.5/air_pollution", q, &pol); err != nil {
		return 0, err
	}
	if len(pol.List) == 0 {
		return 0, &FetchError{Service: "air quality", Kind: KindDecode, Err: errors.New("empty list")}
	}
	// the API reports a 1..5 category; prefer the PM2.5 concentration,
	// which maps onto the 0..500 scale the thresholds use
	item := pol.List[0]
	if item.Components.PM25 != nil {
		if aqi, ok := aqiFromPM25(*item.Components.PM25); ok {
			return aqi, nil
		}
	}
	if aqi, ok := aqiFromCategory(item.Main.AQI); ok {
		return aqi, nil
	}
	return 0, &FetchError{
		Service: "air quality",
		Kind:    KindDecode,
		Err:     fmt.Errorf("aqi category %d is outside 1..5", item.Main.AQI),
	}
}

func (o *OpenWeather) get(ctx context.Context, service, path string, q url.Values, out any) error {
	q.Set("appid", o.apiKey)
	u := fmt.Sprintf("%s%s?%s", o.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{Service: service, Kind: KindTransport, Err: err}
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return &FetchError{Service: service, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(service, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Service: service, Kind: KindDecode, Err: err}
	}
	return nil
}
