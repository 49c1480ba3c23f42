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
	"context"
	"fmt"
	"net/http"
)

// Reading is what a Provider returns on success.
type Reading struct {
	Snapshot  climate.Snapshot `json:"snapshot"`
	Source    string           `json:"source"`
	Location  string           `json:"location,omitempty"`
	Latitude  float64          `json:"latitude,omitempty"`
	Longitude float64          `json:"longitude,omitempty"`
}

// Provider supplies the current outdoor conditions.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (Reading, error)
}

type FetchKind int

const (
	KindTransport FetchKind = iota
	KindInvalidKey
	KindNotFound
	KindStatus
	KindDecode
	KindImplausible
)

// FetchError is a failed upstream fetch. Error() is worded for the
// person looking at the panel.
type FetchError struct {
	Service    string // "weather" or "air quality"
	Kind       FetchKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindInvalidKey:
		return "Invalid API key. Please check your OpenWeatherMap credentials."
	case KindNotFound:
		return "Location not found. Please check city/country names."
	case KindStatus:
		return fmt.Sprintf("Error fetching %s data: %d", e.Service, e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("Error reading %s data: %v", e.Service, e.Err)
	case KindImplausible:
		return fmt.Sprintf("Rejected %s data: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("Error fetching %s data: %v", e.Service, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func statusError(service string, code int) *FetchError {
	kind := KindStatus
	switch code {
	case http.StatusUnauthorized:
		kind = KindInvalidKey
	case http.StatusNotFound:
		kind = KindNotFound
	}
	return &FetchError{Service: service, Kind: kind, StatusCode: code}
}

// Manual always returns the same snapshot.
type Manual struct {
	Snapshot climate.Snapshot
}

func (m Manual) Name() string { return "manual" }

func (m Manual) Fetch(context.Context) (Reading, error) {
	return Reading{Snapshot: m.Snapshot, Source: m.Name(), Location: "manual input"}, nil
}
