package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
)

// Catalog fetches the OpenRouter model listing. It backs the pricing
// lookup for cost accounting and the /api/catalog endpoint.
type Catalog struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *catalogCache
}

func NewCatalog(apiKey, baseURL string) *Catalog {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &Catalog{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		cache:      newCatalogCache(config.CatalogCacheDuration),
	}
}

func (c *Catalog) ListModels(ctx context.Context) ([]domain.CatalogModel, error) {
	if cached := c.cache.Get(); cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch models: status %d", resp.StatusCode)
	}

	var result struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Pricing     struct {
				Prompt     string `json:"prompt"`
				Completion string `json:"completion"`
			} `json:"pricing"`
			ContextLength int `json:"context_length"`
			TopProvider   struct {
				ContextLength int `json:"context_length"`
			} `json:"top_provider"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	models := make([]domain.CatalogModel, 0, len(result.Data))
	for _, m := range result.Data {
		// A malformed price must not pass as zero: zero means free.
		promptPrice, perr := strconv.ParseFloat(m.Pricing.Prompt, 64)
		completionPrice, cerr := strconv.ParseFloat(m.Pricing.Completion, 64)
		if perr != nil || cerr != nil {
			slog.Warn("skipping model with malformed pricing", "model", m.ID)
			continue
		}

		// Prices from OpenRouter are per token, convert to per 1M tokens
		promptPrice *= 1_000_000
		completionPrice *= 1_000_000

		ctxLen := m.ContextLength
		if m.TopProvider.ContextLength > 0 {
			ctxLen = m.TopProvider.ContextLength
		}

		models = append(models, domain.CatalogModel{
			ID:              m.ID,
			Name:            m.Name,
			Description:     m.Description,
			PromptPrice:     promptPrice,
			CompletionPrice: completionPrice,
			ContextLength:   ctxLen,
		})
	}

	c.cache.Set(models)
	return models, nil
}

func (c *Catalog) GetModel(ctx context.Context, modelID string) (*domain.CatalogModel, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range models {
		if m.ID == modelID {
			return &m, nil
		}
	}
	return nil, domain.ErrUnknownModel
}
