package modelsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenRouterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":[
			{"id":"anthropic/claude-sonnet-4-5","context_length":200000,
			 "pricing":{"prompt":"0.000003","completion":"0.000015"}},
			{"id":"no-slash-id","context_length":1,"pricing":{"prompt":"0","completion":"0"}},
			{"id":"openai/gpt-5","context_length":400000,
			 "pricing":{"prompt":"bogus","completion":"0.00001"}}
		]}`))
	}))
	defer srv.Close()

	p := NewOpenRouter()
	p.BaseURL = srv.URL

	models, err := p.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("got %d models, want 1 (malformed entries skipped)", len(models))
	}
	m := models[0]
	if m.Provider != "anthropic" || m.Model != "claude-sonnet-4-5" {
		t.Errorf("identity = %s/%s", m.Provider, m.Model)
	}
	if m.InputPerMTok != 3.0 || m.OutputPerMTok != 15.0 {
		t.Errorf("prices = %v/%v, want 3/15 per MTok", m.InputPerMTok, m.OutputPerMTok)
	}

	if !p.HealthCheck(context.Background()) {
		t.Error("HealthCheck = false against live server")
	}
}

func TestOpenRouterFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOpenRouter()
	p.BaseURL = srv.URL

	models, err := p.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("static fallback returned no models")
	}
	if p.HealthCheck(context.Background()) {
		t.Error("HealthCheck = true against failing server")
	}
}

func TestLiteLLMFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"claude-opus-4-5": {"litellm_provider":"anthropic",
				"input_cost_per_token":0.000005,"output_cost_per_token":0.000025,
				"max_input_tokens":200000},
			"sample_spec": {"litellm_provider":"","input_cost_per_token":0,"output_cost_per_token":0}
		}`))
	}))
	defer srv.Close()

	p := NewLiteLLM()
	p.URL = srv.URL

	models, err := p.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("got %d models, want 1", len(models))
	}
	m := models[0]
	if m.InputPerMTok != 5.0 || m.OutputPerMTok != 25.0 || m.ContextWindow != 200000 {
		t.Errorf("model = %+v", m)
	}
}

func TestLiteLLMFallsBackOnNetworkError(t *testing.T) {
	p := NewLiteLLM()
	p.URL = "http://127.0.0.1:1/pricing.json"
	p.Client = &http.Client{Timeout: 200 * time.Millisecond}

	models, err := p.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("static fallback returned no models")
	}
}

func TestAnthropicIsOfficialAndStatic(t *testing.T) {
	p := NewAnthropic()
	p.APIKey = ""
	if !p.Official() || p.Priority() != 1 {
		t.Errorf("official=%v priority=%d, want vendor source", p.Official(), p.Priority())
	}
	models, err := p.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("no models from static vendor table")
	}
	for _, m := range models {
		if m.Provider != "anthropic" || m.InputPerMTok <= 0 || m.OutputPerMTok <= 0 {
			t.Errorf("bad entry: %+v", m)
		}
	}
}

func TestAnthropicKeyedListingAddsDatedReleases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[
			{"id":"claude-sonnet-4-5-20260115"},
			{"id":"claude-sonnet-4-5"},
			{"id":"totally-unrelated-model"}
		]}`))
	}))
	defer srv.Close()

	p := NewAnthropic()
	p.BaseURL = srv.URL
	p.APIKey = "test-key"

	models, err := p.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}

	var dated bool
	for _, m := range models {
		if m.Model == "claude-sonnet-4-5-20260115" {
			dated = true
			if m.InputPerMTok != 3.00 || m.OutputPerMTok != 15.00 {
				t.Errorf("dated release not priced by family: %+v", m)
			}
		}
		if m.Model == "totally-unrelated-model" {
			t.Error("unmatchable ID should be skipped")
		}
	}
	if !dated {
		t.Error("dated release missing from listing merge")
	}
}
