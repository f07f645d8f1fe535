package convex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(path string, args map[string]Value) (Value, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req callRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		value, errMsg := handler(req.Path, req.Args)
		resp := callResponse{Status: "success", Value: value}
		if errMsg != "" {
			resp = callResponse{Status: "error", ErrorMessage: errMsg}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientQuery(t *testing.T) {
	srv := newTestServer(t, func(path string, args map[string]Value) (Value, string) {
		assert.Equal(t, "messages:list", path)
		limit, ok := args["limit"]
		require.True(t, ok)
		assert.Equal(t, TypeFloat64, limit.TypeID)
		return NewArray([]Value{NewString("hello")}), ""
	})

	c := NewHTTPClient(srv.URL)
	out, err := c.Query(context.Background(), "messages:list", map[string]Value{
		"limit": NewFloat64(10),
	})
	require.NoError(t, err)
	require.Equal(t, TypeArray, out.TypeID)
	assert.Equal(t, NewString("hello"), out.Array[0])
}

func TestHTTPClientRemoteError(t *testing.T) {
	srv := newTestServer(t, func(string, map[string]Value) (Value, string) {
		return Value{}, "document not found"
	})

	c := NewHTTPClient(srv.URL)
	_, err := c.Mutation(context.Background(), "messages:send", nil)
	require.Error(t, err)
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "messages:send", rerr.Path)
	assert.Contains(t, err.Error(), "document not found")
}

func TestHTTPClientSubscribe(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, func(string, map[string]Value) (Value, string) {
		// First two polls see the same value, the third a new one.
		if calls.Add(1) <= 2 {
			return NewFloat64(1), ""
		}
		return NewFloat64(2), ""
	})

	c := NewHTTPClient(srv.URL, WithPollInterval(5*time.Millisecond))
	sub, err := c.Subscribe(context.Background(), "counter:get", nil)
	require.NoError(t, err)
	defer sub.Close()

	first := <-sub.Updates()
	assert.Equal(t, NewFloat64(1), first)

	select {
	case second := <-sub.Updates():
		assert.Equal(t, NewFloat64(2), second)
	case err := <-sub.Errs():
		t.Fatalf("unexpected subscription error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered")
	}

	sub.Close()
	sub.Close() // idempotent
}
