package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Directory string `json:"directory"`
	Page      int    `json:"page"`
}

func (p page) LogFields() logrus.Fields {
	return logrus.Fields{"directory": p.Directory, "page": p.Page}
}

func TestHTTPClientPostsJSON(t *testing.T) {
	var got page
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate-filename", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL+"/", "", time.Second)
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/generate-filename", c.Endpoint())
	require.NoError(t, c.Deliver(context.Background(), page{Directory: "/data", Page: 2}))
	require.Equal(t, page{Directory: "/data", Page: 2}, got)
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"page":1`)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, "/generate-filename", time.Second)
	require.NoError(t, err)
	c.client.Transport.(*Transport).Backoff = time.Millisecond
	require.NoError(t, c.Deliver(context.Background(), page{Page: 1}))
	require.EqualValues(t, 3, calls.Load())
}

func TestHTTPClientGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, "", time.Second)
	require.NoError(t, err)
	c.client.Transport.(*Transport).Backoff = time.Millisecond
	err = c.Deliver(context.Background(), page{})

	var derr *Error
	require.True(t, errors.As(err, &derr))
	require.Equal(t, http.StatusServiceUnavailable, derr.Status)
	require.ErrorIs(t, err, ErrStatus)
	require.Contains(t, err.Error(), "down for maintenance")
	require.EqualValues(t, 3, calls.Load())
}

func TestHTTPClientClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, "", time.Second)
	require.NoError(t, err)
	err = c.Deliver(context.Background(), page{})
	var derr *Error
	require.True(t, errors.As(err, &derr))
	require.Equal(t, http.StatusBadRequest, derr.Status)
	require.EqualValues(t, 1, calls.Load())
}

func TestHTTPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, "", 500*time.Millisecond)
	require.NoError(t, err)
	c.client.Transport.(*Transport).Backoff = time.Millisecond
	err = c.Deliver(context.Background(), page{})
	var derr *Error
	require.True(t, errors.As(err, &derr))
	require.Zero(t, derr.Status)
}

func TestNewHTTPClientRejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("", "", 0)
	require.Error(t, err)
	_, err = NewHTTPClient("not a url", "", 0)
	require.Error(t, err)
}

func TestNewSelectsMode(t *testing.T) {
	d, err := New(Options{Mode: ModeOff})
	require.NoError(t, err)
	require.IsType(t, Noop{}, d)

	d, err = New(Options{})
	require.NoError(t, err)
	require.IsType(t, LogOnly{}, d)

	d, err = New(Options{Mode: ModeHTTP, BaseURL: "http://localhost:9"})
	require.NoError(t, err)
	require.IsType(t, &HTTPClient{}, d)

	_, err = New(Options{Mode: "carrier-pigeon"})
	require.Error(t, err)
}

func TestLogOnlyLogsSummary(t *testing.T) {
	logger, hook := test.NewNullLogger()
	require.NoError(t, LogOnly{Logger: logger}.Deliver(context.Background(), page{Directory: "/d", Page: 3}))
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	require.Equal(t, "/d", entry.Data["directory"])
	require.Equal(t, 3, entry.Data["page"])
	require.Equal(t, logrus.InfoLevel, entry.Level)
}
