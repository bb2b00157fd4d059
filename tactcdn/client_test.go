package tactcdn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientConfigFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/config/ab/cd/abcd1234"))
		w.Write([]byte("root = deadbeef\nencoding = c1 e1\n"))
	}))
	defer srv.Close()

	c := New(Options{})
	defer c.Close()

	cfg, err := c.Config(context.Background(), srv.Listener.Addr().String(), "tpr/wow", "abcd1234")
	require.NoError(t, err)
	root, ok := cfg.Get("root")
	require.True(t, ok)
	require.Equal(t, "deadbeef", root)
}

func TestClientDataRangeSetsRangeHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bytes=10-29", r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(make([]byte, 20))
	}))
	defer srv.Close()

	c := New(Options{})
	defer c.Close()

	data, err := c.DataRange(context.Background(), srv.Listener.Addr().String(), "tpr/wow", "abcd1234abcd1234", 10, 20)
	require.NoError(t, err)
	require.Len(t, data, 20)
}

func TestClientRetriesOnFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 3})
	defer c.Close()

	body, err := c.fetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", body)
	require.Equal(t, 2, attempts)
}

func TestClientFailsAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 2, RetryWait: 0})
	defer c.Close()

	_, err := c.fetchText(context.Background(), srv.URL)
	require.Error(t, err)
}
