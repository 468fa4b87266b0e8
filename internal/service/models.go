package service

import (
	"context"

	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
	"github.com/convoplay/convoplay/internal/provider"
)

// builtinModels is the model table the UI selects from.
var builtinModels = []domain.LLMModel{
	{
		Key:         "llama",
		Name:        "LLaMA 3.3",
		ModelID:     "meta-llama/llama-3.3-8b-instruct:free",
		Provider:    domain.ProviderOpenRouter,
		Description: "Free LLaMA model for text conversations",
	},
	{
		Key:         "mistral",
		Name:        "Mistral Small",
		ModelID:     "mistralai/mistral-small-3.2-24b-instruct:free",
		Provider:    domain.ProviderOpenRouter,
		Description: "Free Mistral model for text conversations",
	},
	{
		Key:         "gemini",
		Name:        "Gemini Flash Lite",
		ModelID:     "gemini-2.5-flash-lite",
		Provider:    domain.ProviderGoogle,
		Description: "Google's Gemini Flash Lite model",
	},
}

// ModelManager binds model keys to provider clients and exposes the one
// generate operation the conversation layer needs.
type ModelManager struct {
	clients map[domain.ProviderName]provider.Client
	models  map[string]domain.LLMModel
	order   []string
}

func NewModelManager(clients map[domain.ProviderName]provider.Client) *ModelManager {
	m := &ModelManager{
		clients: clients,
		models:  make(map[string]domain.LLMModel, len(builtinModels)),
	}
	for _, model := range builtinModels {
		m.models[model.Key] = model
		m.order = append(m.order, model.Key)
	}
	return m
}

// Lookup returns the model table entry for key.
func (m *ModelManager) Lookup(key string) (domain.LLMModel, error) {
	model, ok := m.models[key]
	if !ok {
		return domain.LLMModel{}, domain.ErrUnknownModel
	}
	return model, nil
}

// List returns the model table in stable order.
func (m *ModelManager) List() []domain.LLMModel {
	out := make([]domain.LLMModel, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.models[key])
	}
	return out
}

// Generate resolves the model key to a provider client and runs a single
// completion. Messages must already carry the system prompt and the
// trimmed history.
func (m *ModelManager) Generate(ctx context.Context, modelKey string, temperature float64, messages []provider.Message) (*provider.Reply, domain.LLMModel, error) {
	model, err := m.Lookup(modelKey)
	if err != nil {
		return nil, domain.LLMModel{}, err
	}

	client, ok := m.clients[model.Provider]
	if !ok {
		return nil, model, domain.ErrUnknownModel
	}

	reply, err := client.Complete(ctx, provider.Request{
		ModelID:     model.ModelID,
		Temperature: temperature,
		MaxTokens:   config.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return nil, model, err
	}
	return reply, model, nil
}
