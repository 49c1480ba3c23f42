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

package panel

import (
	"climactl/internal/climate"
	"climactl/pkg/logger"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

//go:embed www
var assets embed.FS

// Manual input bounds.
const (
	MinManualTempC = -20.0
	MaxManualTempC = 50.0
	MaxManualAQI   = 500
)

type clientSet struct {
	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
}

func newClientSet() *clientSet {
	return &clientSet{clients: make(map[*websocket.Conn]bool)}
}

func (c *clientSet) broadcast(st State, log *logger.Logger) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Error("failed to marshal broadcast: %v", err)
		return
	}
	pm, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		log.Error("failed to prepare message: %v", err)
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	for ws := range c.clients {
		if err := ws.WritePreparedMessage(pm); err != nil {
			log.Debug("dropping client: %v", err)
			ws.Close()
			delete(c.clients, ws)
		}
	}
}

func (c *clientSet) add(ws *websocket.Conn) {
	c.mutex.Lock()
	c.clients[ws] = true
	c.mutex.Unlock()
}

func (c *clientSet) remove(ws *websocket.Conn) {
	c.mutex.Lock()
	delete(c.clients, ws)
	c.mutex.Unlock()
}

func (c *clientSet) count() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.clients)
}

func (c *clientSet) closeAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for ws := range c.clients {
		ws.Close()
		delete(c.clients, ws)
	}
}

func (p *Panel) buildHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", p.serveRoot)
	mux.HandleFunc("/ws", p.serveWebSockets)
	mux.HandleFunc("GET /api/state", p.serveState)
	mux.HandleFunc("POST /api/evaluate", p.serveEvaluate)
	mux.HandleFunc("POST /api/preferences", p.servePreferences)
	return mux
}

func (p *Panel) serveRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, assets, "www/panel.html")
}

func (p *Panel) serveWebSockets(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			p.log.Debug("checking origin: %s", origin)
			if origin == "" {
				return false
			}
			if strings.Contains(origin, "localhost") {
				return true
			}
			return strings.Contains(origin, r.Host)
		},
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.log.Error("failed to upgrade websocket: %v", err)
		return
	}
	p.clients.add(ws)
	defer func() {
		p.clients.remove(ws)
		ws.Close()
	}()

	select {
	case p.clientQueue <- Request{Command: "broadcast"}:
	default:
	}

	for {
		var req Request
		if err := ws.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.log.Debug("ws read: %v", err)
			}
			return
		}
		select {
		case p.clientQueue <- req:
		default:
			p.log.Debug("clientQueue is full; dropping client message")
		}
	}
}

func (p *Panel) serveState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.state())
}

// EvaluateRequest is a manual what-if evaluation. Occupancy and
// preferences default to the live values.
type EvaluateRequest struct {
	TemperatureC *float64             `json:"temperature_c"`
	Humidity     *float64             `json:"humidity"`
	AQI          climate.AirQuality   `json:"aqi"`
	Occupied     *bool                `json:"occupied,omitempty"`
	Preferences  *climate.Preferences `json:"preferences,omitempty"`
}

type EvaluateResponse struct {
	Snapshot    climate.Snapshot    `json:"snapshot"`
	Display     *Display            `json:"display"`
	Occupied    bool                `json:"occupied"`
	Preferences climate.Preferences `json:"preferences"`
	Decision    climate.Decision    `json:"decision"`
}

func (req EvaluateRequest) snapshot() (climate.Snapshot, error) {
	switch {
	case req.TemperatureC == nil:
		return climate.Snapshot{}, errors.New("temperature_c is required")
	case *req.TemperatureC < MinManualTempC || *req.TemperatureC > MaxManualTempC:
		return climate.Snapshot{}, fmt.Errorf("temperature_c must be within %.0f..%.0f", MinManualTempC, MaxManualTempC)
	case req.Humidity == nil:
		return climate.Snapshot{}, errors.New("humidity is required")
	case *req.Humidity < 0 || *req.Humidity > 100:
		return climate.Snapshot{}, errors.New("humidity must be within 0..100")
	case req.AQI.Known && req.AQI.Index > MaxManualAQI:
		return climate.Snapshot{}, fmt.Errorf("aqi must be within 0..%d", MaxManualAQI)
	}
	return climate.Snapshot{TemperatureC: *req.TemperatureC, Humidity: *req.Humidity, AQI: req.AQI}, nil
}

// serveEvaluate runs the engine on the posted conditions without
// touching the live state.
func (p *Panel) serveEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}
	snap, err := req.snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefs := p.advisor.Preferences()
	if req.Preferences != nil {
		if err := req.Preferences.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prefs = *req.Preferences
	}
	occupied := p.occupancy.Occupied()
	if req.Occupied != nil {
		occupied = *req.Occupied
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Snapshot:    snap,
		Display:     display(snap),
		Occupied:    occupied,
		Preferences: prefs,
		Decision:    p.advisor.Engine().Evaluate(snap, prefs, occupied),
	})
}

// servePreferences replaces the live preferences.
func (p *Panel) servePreferences(w http.ResponseWriter, r *http.Request) {
	var next climate.Preferences
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}
	err := next.Validate()
	if err == nil {
		err = withinSliders(next)
	}
	if err == nil {
		err = p.updatePreferences(func(cur *climate.Preferences) { *cur = next })
	}
	var cerr *climate.ConfigError
	if errors.As(err, &cerr) {
		http.Error(w, cerr.Error(), http.StatusBadRequest)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
