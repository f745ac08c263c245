package pdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{}, Attempts: 3, Delay: time.Millisecond, Timeout: time.Second}
}

func TestFetchRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := testFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchGivesUpAfterAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)

	assert.ErrorContains(t, err, "404")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchTimesOutSlowAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := testFetcher()
	f.Attempts = 1
	f.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
