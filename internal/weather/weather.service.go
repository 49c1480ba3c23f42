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
	"climactl/internal/events"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

const historyWindow = 24 * time.Hour

// Entry is one history point.
type Entry struct {
	Time         time.Time `json:"time"`
	TemperatureC float64   `json:"temp_c"`
	Humidity     float64   `json:"humidity"`
	AQI          *int      `json:"aqi"`
}

// Status is the latest reading and the latest failure, if any.
type Status struct {
	Provider  string     `json:"provider"`
	Latest    *Reading   `json:"latest,omitempty"`
	LatestAt  *time.Time `json:"latest_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	ErrorAt   *time.Time `json:"error_at,omitempty"`
}

// Service polls a Provider and publishes each snapshot on the event bus.
type Service struct {
	eb       *eventbus.Bus
	poll     time.Duration
	provider Provider
	log      *logger.Logger
	now      func() time.Time

	// fetchMu serializes polls so history and publishes stay in time order.
	fetchMu sync.Mutex

	mu      sync.RWMutex
	history []Entry
	status  Status
}

func New(provider Provider, eb *eventbus.Bus, poll time.Duration) *Service {
	if poll <= 0 {
		poll = 10 * time.Minute
	}
	return &Service{
		eb:       eb,
		poll:     poll,
		provider: provider,
		log:      logger.New("Weather"),
		now:      time.Now,
		history:  make([]Entry, 0, 256),
		status:   Status{Provider: provider.Name()},
	}
}

func (w *Service) Run(ctx context.Context) {
	w.log.Info("Running with provider %s every %v", w.provider.Name(), w.poll)
	defer w.log.Info("Stopped")

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	_ = w.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.pollOnce(ctx)
		}
	}
}

// pollOnce fetches, records and publishes. On failure nothing is
// published, so the advisor keeps deciding on the last good snapshot.
func (w *Service) pollOnce(ctx context.Context) error {
	w.fetchMu.Lock()
	defer w.fetchMu.Unlock()
	now := w.now()

	reading, err := w.provider.Fetch(ctx)
	if err == nil {
		w.mu.RLock()
		err = checkReading(w.lastEntry(), reading.Snapshot, now)
		w.mu.RUnlock()
	}
	if err != nil {
		w.log.Error("fetch: %v", err)
		w.mu.Lock()
		w.status.LastError = err.Error()
		w.status.ErrorAt = &now
		w.mu.Unlock()
		return err
	}

	entry := Entry{
		Time:         now,
		TemperatureC: reading.Snapshot.TemperatureC,
		Humidity:     reading.Snapshot.Humidity,
	}
	if reading.Snapshot.AQI.Known {
		v := reading.Snapshot.AQI.Index
		entry.AQI = &v
	}

	w.mu.Lock()
	w.history = append(w.history, entry)
	cutoff := now.Add(-historyWindow)
	idx := sort.Search(len(w.history), func(i int) bool {
		return !w.history[i].Time.Before(cutoff)
	})
	if idx > 0 {
		w.history = append([]Entry(nil), w.history[idx:]...)
	}
	w.status.Latest = &reading
	w.status.LatestAt = &now
	w.status.LastError = ""
	w.status.ErrorAt = nil
	w.mu.Unlock()

	w.log.Debug("%s: %.1f°C %.0f%% aqi=%s", reading.Location,
		reading.Snapshot.TemperatureC, reading.Snapshot.Humidity, reading.Snapshot.AQI)

	w.eb.Publish(events.TopicSnapshot, events.SnapshotUpdate{
		Snapshot:  reading.Snapshot,
		Source:    reading.Source,
		Location:  reading.Location,
		Latitude:  reading.Latitude,
		Longitude: reading.Longitude,
		Time:      now,
	})
	return nil
}

// lastEntry returns the newest history point. Caller holds w.mu.
func (w *Service) lastEntry() *Entry {
	if len(w.history) == 0 {
		return nil
	}
	return &w.history[len(w.history)-1]
}

// Refresh polls right away, outside the ticker.
func (w *Service) Refresh(ctx context.Context) error {
	return w.pollOnce(ctx)
}

func (w *Service) History() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entry, len(w.history))
	copy(out, w.history)
	return out
}

func (w *Service) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

var htmlPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8" />
<title>Outdoor Conditions (24h)</title>
<style>
body { font-family: system-ui, -apple-system, "Segoe UI", Roboto, "Helvetica Neue", Arial; padding: 24px }
.container { max-width: 900px; margin: 0 auto }
.card { border-radius: 8px; padding: 16px; box-shadow: 0 2px 6px rgba(0,0,0,0.08) }
</style>
</head>
<body>
<div class="container">
<h1>Outdoor Conditions (last 24h)</h1>
<p id="status"></p>
<div class="card">
<canvas id="chart" width="860" height="300"></canvas>
</div>
<form method="POST" action="./refresh"><button type="submit">Refresh now</button></form>
</div>

<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<script>
let chart;
async function render() {
  const st = await (await fetch('./api/status')).json();
  document.getElementById('status').textContent = st.last_error
    ? 'Last fetch failed: ' + st.last_error
    : (st.latest ? st.latest.location + ' via ' + st.provider : 'waiting for data');

  const hist = await (await fetch('./api/history')).json();
  const labels = hist.map(x => new Date(x.time).toLocaleTimeString());
  const temp = hist.map(x => x.temp_c);
  const hum = hist.map(x => x.humidity);
  const aqi = hist.map(x => x.aqi);
  if (!chart) {
    chart = new Chart(document.getElementById('chart').getContext('2d'), {
      type: 'line',
      data: { labels, datasets: [
        { label: '°C', data: temp, tension: 0.2 },
        { label: 'RH %', data: hum, tension: 0.2 },
        { label: 'AQI', data: aqi, tension: 0.2, spanGaps: false },
      ]},
      options: { scales: { y: { beginAtZero: false } } }
    });
  } else {
    chart.data.labels = labels;
    chart.data.datasets[0].data = temp;
    chart.data.datasets[1].data = hum;
    chart.data.datasets[2].data = aqi;
    chart.update();
  }
}
render();
setInterval(render, 30_000);
</script>
</body>
</html>`

// ServeHTTP serves the chart page, /api/history, /api/status and
// POST /refresh.
func (w *Service) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "", "/":
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write([]byte(htmlPage))
	case "/api/history":
		writeJSON(rw, w.History())
	case "/api/status":
		writeJSON(rw, w.Status())
	case "/refresh":
		if r.Method != http.MethodPost {
			http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := w.Refresh(r.Context()); err != nil {
			http.Error(rw, err.Error(), http.StatusBadGateway)
			return
		}
		// relative to the mount point, which StripPrefix hid from us
		rw.Header().Set("Location", "./")
		rw.WriteHeader(http.StatusSeeOther)
	default:
		http.NotFound(rw, r)
	}
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(rw)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
