package domain

// ProviderName selects which client a model is served by.
type ProviderName string

const (
	ProviderOpenRouter ProviderName = "openrouter"
	ProviderGoogle     ProviderName = "google"
)

// LLMModel is an entry of the built-in model table: a short key the UI
// selects by, plus the provider-side model identifier.
type LLMModel struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	ModelID     string       `json:"model_id"`
	Provider    ProviderName `json:"provider"`
	Description string       `json:"description"`
}

// CatalogModel describes a model as listed by the OpenRouter catalog.
// Prices are USD per 1M tokens.
type CatalogModel struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PromptPrice     float64 `json:"prompt_price"`
	CompletionPrice float64 `json:"completion_price"`
	ContextLength   int     `json:"context_length"`
}

func (m *CatalogModel) IsFree() bool {
	return m.PromptPrice == 0 && m.CompletionPrice == 0
}
