package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_DoJSON_SendsHeadersAndDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v1/send" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL + "/", Headers: map[string]string{"X-Api-Key": "secret"}})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var out struct {
		Echo string `json:"echo"`
	}
	if err := c.DoJSON(context.Background(), http.MethodPost, "v1/send", map[string]string{"msg": "hola"}, &out); err != nil {
		t.Fatalf("DoJSON error: %v", err)
	}
	if out.Echo != "hola" {
		t.Fatalf("expected echo hola, got %q", out.Echo)
	}
}

func TestClient_DoJSON_Non2xxIsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c, _ := New(Config{BaseURL: ts.URL})

	err := c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable || !httpErr.Temporary() {
		t.Fatalf("expected temporary 503, got %+v", httpErr)
	}
}

func TestClient_RelativePathWithoutBaseURL(t *testing.T) {
	c, _ := New(Config{})
	if err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil); err == nil {
		t.Fatalf("expected error for relative path without base url")
	}
}
