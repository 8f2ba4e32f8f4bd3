// Package testutil provides helpers shared by the integration tests
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope is the JSON body every API response is wrapped in
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalPages int   `json:"totalPages"`
	} `json:"meta"`
}

// APIClient sends JSON requests straight to an http.Handler
type APIClient struct {
	Handler http.Handler
	Token   string
}

// WithToken returns a copy of the client authenticated with token
func (c APIClient) WithToken(token string) APIClient {
	c.Token = token
	return c
}

// Do sends a request. body is marshalled to JSON unless nil.
func (c APIClient) Do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c.Handler.ServeHTTP(w, req)
	return w
}

// Decode parses a response envelope
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse response: %s", w.Body.String())
	return env
}

// MustDecode parses a response envelope and requires the expected status
func MustDecode[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()

	require.Equal(t, status, w.Code, "Unexpected status, body: %s", w.Body.String())
	env := Decode[T](t, w)
	require.True(t, env.Success)
	return env.Data
}
