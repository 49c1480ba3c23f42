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

package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFileAndWebTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	require.NoError(t, Init(path))
	t.Cleanup(Close)

	log := New("Test")
	log.Info("hello %d", 1)
	log.Error("broken %s", "pipe")
	EnableDebug(false)
	log.Debug("hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Test] INFO: hello 1")
	assert.Contains(t, string(data), "[Test] ERROR: (logger_test.go:")
	assert.NotContains(t, string(data), "hidden")

	out, err := tail(10, "ERROR")
	require.NoError(t, err)
	assert.Contains(t, out, "broken pipe")
	assert.NotContains(t, out, "hello 1")

	svc := WebService("/logger")

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/toggle", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/toggle", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, IsDebug())
	EnableDebug(false)

	rec = httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clear", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	log.Info("after clear")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hello 1")
	assert.Contains(t, string(data), "after clear")

	rec = httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?n=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Last 5 log lines")
}

func TestFatalPanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom 7", func() {
		New("Test").Fatal("boom %d", 7)
	})
}
