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

package rootserv

import (
	"climactl/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
)

const shutdownTimeout = 5 * time.Second

// RootServer holds a mux and the list of attached sub-handlers.
type RootServer struct {
	log        *logger.Logger
	addr       string
	mux        *http.ServeMux
	subservers map[string]string // path -> description
	mainPage   http.Handler      // optional subserver for '/'
}

func New(addr string) *RootServer {
	rs := &RootServer{
		addr:       addr,
		mux:        http.NewServeMux(),
		subservers: make(map[string]string),
		log:        logger.New("HTTPServer"),
	}
	rs.mux.HandleFunc("/index", rs.handleIndex)
	rs.mux.HandleFunc("/", rs.handleRoot)
	return rs
}

// Attach mounts handler under path with the prefix stripped, so the
// handler sees "/" for its own root. Path "/" sets the main page.
func (ms *RootServer) Attach(path, desc string, handler http.Handler) {
	ms.log.Info("Attach: %s", path)

	if path == "/" {
		ms.mainPage = handler
		return
	}

	path = "/" + strings.Trim(path, "/")
	ms.subservers[path] = desc

	// "/x" redirects to "/x/" so relative links inside the page resolve
	ms.mux.Handle(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently))
	ms.mux.Handle(path+"/", http.StripPrefix(path, handler))
}

// Handler is the full routing with response compression. Websocket
// upgrades bypass gzip since they need the raw connection.
func (ms *RootServer) Handler() http.Handler {
	gz := gziphandler.GzipHandler(ms.mux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			ms.mux.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

func (ms *RootServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if ms.mainPage != nil {
		ms.mainPage.ServeHTTP(w, r)
		return
	}
	http.Redirect(w, r, "/index", http.StatusTemporaryRedirect)
}

// handleIndex lists the attached subservers as HTML, or JSON when asked.
func (ms *RootServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	paths := make([]string, 0, len(ms.subservers))
	for path := range ms.subservers {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ms.subservers)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintln(w, "<!DOCTYPE html><html><head><title>climactl</title></head><body>")
	fmt.Fprintln(w, "<h1>climactl</h1><ul>")
	for _, path := range paths {
		fmt.Fprintf(w, `<li><a href="%s/">%s</a> - %s</li>`, path, path, html.EscapeString(ms.subservers[path]))
	}
	fmt.Fprintln(w, "</ul></body></html>")
}

// Run starts serving and blocks until the context is canceled.
func (ms *RootServer) Run(ctx context.Context) {
	ms.log.Info("Running on %s", ms.addr)

	srv := &http.Server{
		Addr:              ms.addr,
		Handler:           ms.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			ms.log.Error("shutdown: %v", err)
		}
		ms.log.Info("Stopped")
	case err := <-errCh:
		ms.log.Error("Stopped: %T %+v", err, err)
	}
}
