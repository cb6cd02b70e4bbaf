package modelsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

const litellmPricingURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

// LiteLLMProvider reads the community-maintained pricing JSON LiteLLM
// publishes. The file is one large object keyed by model name with
// per-token USD costs; entries without a provider or cost data are
// skipped. Like the other network source it falls back to a static
// table when the fetch fails.
type LiteLLMProvider struct {
	URL    string
	Client *http.Client
	now    func() time.Time
}

func NewLiteLLM() *LiteLLMProvider {
	return &LiteLLMProvider{
		URL:    litellmPricingURL,
		Client: &http.Client{Timeout: 15 * time.Second},
		now:    time.Now,
	}
}

func (p *LiteLLMProvider) Name() string   { return "litellm" }
func (p *LiteLLMProvider) Official() bool { return false }
func (p *LiteLLMProvider) Priority() int  { return 20 }

func (p *LiteLLMProvider) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type litellmEntry struct {
	Provider           string  `json:"litellm_provider"`
	InputCostPerToken  float64 `json:"input_cost_per_token"`
	OutputCostPerToken float64 `json:"output_cost_per_token"`
	MaxInputTokens     int     `json:"max_input_tokens"`
}

func (p *LiteLLMProvider) FetchModels(ctx context.Context) ([]core.ModelInfo, error) {
	fetched, err := p.fetch(ctx)
	if err != nil {
		log.Printf("[modelsync] litellm fetch failed, using static table: %v", err)
		return p.static(), nil
	}
	return fetched, nil
}

func (p *LiteLLMProvider) fetch(ctx context.Context) ([]core.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("litellm: unexpected status %d", resp.StatusCode)
	}

	var raw map[string]litellmEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("litellm: decoding pricing json: %w", err)
	}

	synced := p.now().UTC()
	var models []core.ModelInfo
	for name, e := range raw {
		if e.Provider == "" || (e.InputCostPerToken == 0 && e.OutputCostPerToken == 0) {
			continue
		}
		models = append(models, core.ModelInfo{
			Provider:      e.Provider,
			Model:         name,
			InputPerMTok:  e.InputCostPerToken * 1e6,
			OutputPerMTok: e.OutputCostPerToken * 1e6,
			ContextWindow: e.MaxInputTokens,
			LastSynced:    synced,
		})
	}
	return models, nil
}

func (p *LiteLLMProvider) static() []core.ModelInfo {
	synced := p.now().UTC()
	return []core.ModelInfo{
		{Provider: "anthropic", Model: "claude-opus-4-5", InputPerMTok: 5.00, OutputPerMTok: 25.00, ContextWindow: 200_000, LastSynced: synced},
		{Provider: "openai", Model: "gpt-5-mini", InputPerMTok: 0.25, OutputPerMTok: 2.00, ContextWindow: 400_000, LastSynced: synced},
		{Provider: "google", Model: "gemini-2.5-flash", InputPerMTok: 0.30, OutputPerMTok: 2.50, ContextWindow: 1_048_576, LastSynced: synced},
	}
}
