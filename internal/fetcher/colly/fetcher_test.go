package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/instascrape/internal/profile"
)

func TestFetcherReturnsBodyWithUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>profile</html>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent/1.0", Timeout: time.Second})
	body, err := f.Fetch(context.Background(), srv.URL+"/someone/")
	require.NoError(t, err)
	require.Equal(t, "<html>profile</html>", string(body))
	require.Equal(t, "test-agent/1.0", gotUA.Load())
}

func TestFetcherDefaultsUserAgent(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	require.Equal(t, profile.DefaultUserAgent, f.cfg.UserAgent)
	require.Equal(t, defaultTimeout, f.cfg.Timeout)
}

func TestFetcherRevisitsSameURL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second})
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), srv.URL+"/user/")
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), hits.Load())
}

func TestFetcherNonSuccessStatusFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second})
	body, err := f.Fetch(context.Background(), srv.URL+"/user/")
	require.ErrorIs(t, err, profile.DocumentRequestFailed)
	require.Nil(t, body)
}

func TestFetcherTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), url+"/user/")
	require.ErrorIs(t, err, profile.DocumentRequestFailed)
}

func TestFetcherCanceledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{Timeout: 5 * time.Second})
	_, err := f.Fetch(ctx, srv.URL+"/user/")
	require.ErrorIs(t, err, profile.DocumentRequestFailed)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	var body []byte
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, &body, &fetchErr)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	hooks.onResponse(&colly.Response{StatusCode: http.StatusOK, Body: []byte("body")})
	require.Equal(t, "body", string(body))

	hooks.onError(&colly.Response{StatusCode: http.StatusNotFound}, errors.New("Not Found"))
	require.EqualError(t, fetchErr, "status 404: Not Found")

	hooks.onError(nil, errors.New("boom"))
	require.EqualError(t, fetchErr, "boom")
}

type stubHooks struct {
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
