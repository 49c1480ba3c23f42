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

package emoncms

import (
	"climactl/internal/config"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource map[string]float64

func (s staticSource) GetData() map[string]float64 { return s }

type recorder struct {
	mu    sync.Mutex
	posts []map[string]string
}

func (r *recorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/input/post", req.URL.Path)
		q := req.URL.Query()
		r.mu.Lock()
		r.posts = append(r.posts, map[string]string{
			"node":     q.Get("node"),
			"apikey":   q.Get("apikey"),
			"fulljson": q.Get("fulljson"),
		})
		r.mu.Unlock()
		w.Write([]byte("ok"))
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

func TestTickPostsAdvisorData(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	src := staticSource{"air_conditioner": 1, "heater": 2}
	svc := New(src, config.DataLoggerConfig{EmonCMSAddr: srv.URL + "/", EmonCMSApiKey: "k&y", IntervalSeconds: 60})
	svc.tick(context.Background())

	require.Equal(t, 1, rec.count())
	post := rec.posts[0]
	assert.Equal(t, Node, post["node"])
	assert.Equal(t, "k&y", post["apikey"])

	var got map[string]float64
	require.NoError(t, json.Unmarshal([]byte(post["fulljson"]), &got))
	assert.Equal(t, map[string]float64(src), got)
}

func TestTickSkipsEmptyData(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	svc := New(staticSource{}, config.DataLoggerConfig{EmonCMSAddr: srv.URL, IntervalSeconds: 60})
	svc.tick(context.Background())
	assert.Zero(t, rec.count())
}

func TestInputPostStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := New(staticSource{}, config.DataLoggerConfig{EmonCMSAddr: srv.URL, IntervalSeconds: 60})
	err := svc.inputPost(context.Background(), Node, map[string]float64{"x": 1})
	assert.ErrorContains(t, err, "401")
}

func TestRunPostsOnInterval(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	svc := New(staticSource{"heater": 0}, config.DataLoggerConfig{EmonCMSAddr: srv.URL})
	svc.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
