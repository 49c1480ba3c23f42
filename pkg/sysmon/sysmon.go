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

package sysmon

import (
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type Metrics struct {
	GoVersion  string         `json:"go_version"`
	Uptime     string         `json:"uptime"`
	Goroutines int            `json:"goroutines"`
	CPU        CPUMetrics     `json:"cpu"`
	Memory     MemoryMetrics  `json:"memory"`
	Disk       DiskMetrics    `json:"disk"`
	EventBus   eventbus.Stats `json:"event_bus"`
}

type CPUMetrics struct {
	SystemPercent  float64 `json:"system_percent"`
	ProcessPercent float64 `json:"process_percent"`
}

type MemoryMetrics struct {
	SystemTotal uint64 `json:"system_total"`
	SystemUsed  uint64 `json:"system_used"`
	SystemFree  uint64 `json:"system_free"`
	ProcessRSS  uint64 `json:"process_rss"`
}

type DiskMetrics struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

// Service is the /monitor page: host, process and event bus health.
type Service struct {
	bus     *eventbus.Bus
	started time.Time
	log     *logger.Logger
}

func New(bus *eventbus.Bus) *Service {
	return &Service{
		bus:     bus,
		started: time.Now(),
		log:     logger.New("System Monitor"),
	}
}

func (s *Service) Collect() Metrics {
	m := Metrics{
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(s.started).Truncate(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		m.CPU.SystemPercent = pct[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		m.Memory.SystemTotal = vmem.Total
		m.Memory.SystemUsed = vmem.Used
		m.Memory.SystemFree = vmem.Available
	}
	if total, free, used, err := DiskUsage("/"); err == nil {
		m.Disk = DiskMetrics{Total: total, Used: used, Free: free}
	} else {
		s.log.Debug("disk usage: %v", err)
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memInfo, err := p.MemoryInfo(); err == nil {
			m.Memory.ProcessRSS = memInfo.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			m.CPU.ProcessPercent = pct
		}
	}

	if s.bus != nil {
		m.EventBus = s.bus.Stats()
	}
	return m
}

var page = template.Must(template.New("monitor").Funcs(template.FuncMap{
	"gb":  func(v uint64) string { return formatFloat(float64(v) / (1 << 30)) },
	"mb":  func(v uint64) string { return formatFloat(float64(v) / (1 << 20)) },
	"pct": func(v float64) string { return formatFloat(v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
	<title>System Monitor</title>
	<style>
		body { font-family: sans-serif; margin: 2em; background: #f9f9f9; }
		table { border-collapse: collapse; width: 60%; margin-top: 1em; }
		th, td { border: 1px solid #ccc; padding: 0.6em 1em; text-align: left; }
		th { background: #eee; }
	</style>
</head>
<body>
	<h1>System Monitor</h1>
	<p>Go {{.GoVersion}}, up {{.Uptime}}, {{.Goroutines}} goroutines</p>
	<h2>CPU</h2>
	<table>
		<tr><th>System %</th><th>Process %</th></tr>
		<tr><td>{{pct .CPU.SystemPercent}}</td><td>{{pct .CPU.ProcessPercent}}</td></tr>
	</table>
	<h2>Memory</h2>
	<table>
		<tr><th>System Total</th><th>System Used</th><th>System Free</th><th>Process RSS</th></tr>
		<tr><td>{{gb .Memory.SystemTotal}} GB</td><td>{{gb .Memory.SystemUsed}} GB</td>
			<td>{{gb .Memory.SystemFree}} GB</td><td>{{mb .Memory.ProcessRSS}} MB</td></tr>
	</table>
	<h2>Disk (/)</h2>
	<table>
		<tr><th>Total</th><th>Used</th><th>Free</th></tr>
		<tr><td>{{gb .Disk.Total}} GB</td><td>{{gb .Disk.Used}} GB</td><td>{{gb .Disk.Free}} GB</td></tr>
	</table>
	<h2>Event bus</h2>
	<table>
		<tr><th>Published</th><th>Delivered</th><th>Replaced</th><th>Dropped</th></tr>
		<tr><td>{{.EventBus.Published}}</td><td>{{.EventBus.Delivered}}</td>
			<td>{{.EventBus.Replaced}}</td><td>{{.EventBus.Dropped}}</td></tr>
	</table>
</body>
</html>
`))

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	metrics := s.Collect()

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, metrics); err != nil {
		s.log.Error("render: %v", err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
