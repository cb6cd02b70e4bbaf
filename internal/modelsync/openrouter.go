package modelsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider pulls the aggregator's public model catalog.
// OpenRouter reports prices as USD per token in decimal strings; they
// are rescaled to per-million here. A fetch failure degrades to a small
// static table so a sync run never comes back empty-handed.
type OpenRouterProvider struct {
	BaseURL string
	Client  *http.Client
	now     func() time.Time
}

func NewOpenRouter() *OpenRouterProvider {
	return &OpenRouterProvider{
		BaseURL: openRouterBaseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

func (p *OpenRouterProvider) Name() string   { return "openrouter" }
func (p *OpenRouterProvider) Official() bool { return false }
func (p *OpenRouterProvider) Priority() int  { return 10 }

func (p *OpenRouterProvider) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/models", nil)
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

type openRouterResponse struct {
	Data []struct {
		ID            string `json:"id"`
		ContextLength int    `json:"context_length"`
		Pricing       struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

func (p *OpenRouterProvider) FetchModels(ctx context.Context) ([]core.ModelInfo, error) {
	fetched, err := p.fetch(ctx)
	if err != nil {
		log.Printf("[modelsync] openrouter fetch failed, using static table: %v", err)
		return p.static(), nil
	}
	return fetched, nil
}

func (p *OpenRouterProvider) fetch(ctx context.Context) ([]core.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter: unexpected status %d", resp.StatusCode)
	}

	var body openRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("openrouter: decoding response: %w", err)
	}

	synced := p.now().UTC()
	var models []core.ModelInfo
	for _, d := range body.Data {
		provider, model, ok := strings.Cut(d.ID, "/")
		if !ok {
			continue
		}
		in, errIn := strconv.ParseFloat(d.Pricing.Prompt, 64)
		out, errOut := strconv.ParseFloat(d.Pricing.Completion, 64)
		if errIn != nil || errOut != nil {
			continue
		}
		models = append(models, core.ModelInfo{
			Provider:      provider,
			Model:         model,
			InputPerMTok:  in * 1e6,
			OutputPerMTok: out * 1e6,
			ContextWindow: d.ContextLength,
			LastSynced:    synced,
		})
	}
	return models, nil
}

func (p *OpenRouterProvider) static() []core.ModelInfo {
	synced := p.now().UTC()
	return []core.ModelInfo{
		{Provider: "anthropic", Model: "claude-sonnet-4-5", InputPerMTok: 3.00, OutputPerMTok: 15.00, ContextWindow: 200_000, LastSynced: synced},
		{Provider: "openai", Model: "gpt-5", InputPerMTok: 1.25, OutputPerMTok: 10.00, ContextWindow: 400_000, LastSynced: synced},
		{Provider: "google", Model: "gemini-2.5-pro", InputPerMTok: 1.25, OutputPerMTok: 10.00, ContextWindow: 1_048_576, LastSynced: synced},
	}
}
