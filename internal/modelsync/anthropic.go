package modelsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

const anthropicBaseURL = "https://api.anthropic.com"

// AnthropicProvider is the vendor source. Anthropic exposes no pricing
// endpoint, so rates come from the documented price list; when an API
// key is configured the models endpoint is consulted to pick up newly
// released IDs, priced by their family entry. Being the vendor it
// outranks every aggregator source under the official-first policy.
type AnthropicProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	now     func() time.Time
}

func NewAnthropic() *AnthropicProvider {
	return &AnthropicProvider{
		BaseURL: anthropicBaseURL,
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		Client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

func (p *AnthropicProvider) Name() string   { return "anthropic" }
func (p *AnthropicProvider) Official() bool { return true }
func (p *AnthropicProvider) Priority() int  { return 1 }

// HealthCheck never fails without a key; the static table needs no
// network.
func (p *AnthropicProvider) HealthCheck(ctx context.Context) bool {
	if p.APIKey == "" {
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *AnthropicProvider) FetchModels(ctx context.Context) ([]core.ModelInfo, error) {
	models := p.static()
	if p.APIKey == "" {
		return models, nil
	}

	listed, err := p.listModels(ctx)
	if err != nil {
		log.Printf("[modelsync] anthropic model listing failed, static table only: %v", err)
		return models, nil
	}

	known := make(map[string]bool, len(models))
	for _, m := range models {
		known[m.Key()] = true
	}
	synced := p.now().UTC()
	for _, id := range listed {
		candidate := core.ModelInfo{Provider: "anthropic", Model: id}
		if known[candidate.Key()] {
			continue
		}
		// Price unknown IDs by the closest static family entry.
		if family, ok := p.familyRate(id); ok {
			candidate.InputPerMTok = family.InputPerMTok
			candidate.OutputPerMTok = family.OutputPerMTok
			candidate.ContextWindow = family.ContextWindow
			candidate.LastSynced = synced
			models = append(models, candidate)
		}
	}
	return models, nil
}

func (p *AnthropicProvider) listModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("anthropic: decoding model list: %w", err)
	}

	ids := make([]string, 0, len(body.Data))
	for _, d := range body.Data {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// familyRate matches a dated release ID like claude-sonnet-4-5-20260115
// to its static family entry by longest prefix.
func (p *AnthropicProvider) familyRate(id string) (core.ModelInfo, bool) {
	var (
		best  core.ModelInfo
		found bool
	)
	for _, m := range p.static() {
		if len(m.Model) <= len(id) && id[:len(m.Model)] == m.Model {
			if !found || len(m.Model) > len(best.Model) {
				best = m
				found = true
			}
		}
	}
	return best, found
}

func (p *AnthropicProvider) static() []core.ModelInfo {
	synced := p.now().UTC()
	rates := []struct {
		model   string
		in, out float64
		window  int
	}{
		{"claude-opus-4-5", 5.00, 25.00, 200_000},
		{"claude-sonnet-4-5", 3.00, 15.00, 200_000},
		{"claude-haiku-4-5", 1.00, 5.00, 200_000},
		{"claude-opus-4-1", 15.00, 75.00, 200_000},
		{"claude-sonnet-4-0", 3.00, 15.00, 200_000},
		{"claude-3-7-sonnet", 3.00, 15.00, 200_000},
		{"claude-3-5-haiku", 0.80, 4.00, 200_000},
	}

	models := make([]core.ModelInfo, 0, len(rates))
	for _, r := range rates {
		models = append(models, core.ModelInfo{
			Provider:      "anthropic",
			Model:         r.model,
			InputPerMTok:  r.in,
			OutputPerMTok: r.out,
			ContextWindow: r.window,
			LastSynced:    synced,
		})
	}
	return models
}
