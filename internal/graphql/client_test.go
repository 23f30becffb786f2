package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDoDecodesData(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer static", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"hello":"world"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Token: "static"})
	var out struct {
		Hello string `json:"hello"`
	}
	err := c.Do(context.Background(), Request{Query: "query { hello }", Variables: map[string]any{"limit": 5}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "world", out.Hello)
	assert.Equal(t, "query { hello }", got.Query)
	assert.EqualValues(t, 5, got.Variables["limit"])
}

func TestClientDoGraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"boom"},{"message":"bang"}]}`))
	}))
	defer srv.Close()

	err := NewClient(Config{URL: srv.URL}).Do(context.Background(), Request{Query: "q"}, &struct{}{})
	var gqlErrs Errors
	require.True(t, errors.As(err, &gqlErrs))
	assert.Len(t, gqlErrs, 2)
	assert.Equal(t, "graphql: boom; bang", err.Error())
}

func TestClientDoStatusErrors(t *testing.T) {
	status := http.StatusBadGateway
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()
	c := NewClient(Config{URL: srv.URL})

	err := c.Do(context.Background(), Request{Query: "q"}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream down", se.Body)

	status = http.StatusUnauthorized
	err = c.Do(context.Background(), Request{Query: "q"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientDoNullDataLeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	out := struct{ Touched bool }{Touched: true}
	require.NoError(t, NewClient(Config{URL: srv.URL}).Do(context.Background(), Request{Query: "q"}, &out))
	assert.True(t, out.Touched)
}

func TestClientDoMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	err := NewClient(Config{URL: srv.URL}).Do(context.Background(), Request{Query: "q"}, nil)
	assert.ErrorContains(t, err, "failed to decode graphql response")
}
