package persona

import (
	"github.com/convoplay/convoplay/internal/domain"
)

// table is the static persona set. Keys are what the UI and the session
// config refer to.
var table = map[string]domain.Persona{
	"assistant": {
		Key:          "assistant",
		Name:         "Helpful Assistant",
		SystemPrompt: "You are a helpful and knowledgeable assistant. Provide clear, accurate, and helpful responses.",
	},
	"creative": {
		Key:          "creative",
		Name:         "Creative Writer",
		SystemPrompt: "You are a creative writer with vivid imagination. Respond with creativity, storytelling flair, and artistic expression.",
	},
	"coder": {
		Key:          "coder",
		Name:         "Expert Coder",
		SystemPrompt: "You are an expert programmer and software developer. Provide clean, efficient code solutions with clear explanations. Focus on best practices, optimization, and practical implementation details.",
	},
	"casual": {
		Key:          "casual",
		Name:         "Casual Friend",
		SystemPrompt: "You are a friendly, casual conversationalist. Be relaxed, use informal language, and be personable.",
	},
}

// order keeps List deterministic for the UI dropdown.
var order = []string{"assistant", "creative", "coder", "casual"}

// Lookup returns the persona for key.
func Lookup(key string) (domain.Persona, error) {
	p, ok := table[key]
	if !ok {
		return domain.Persona{}, domain.ErrUnknownPersona
	}
	return p, nil
}

// List returns all personas in stable order.
func List() []domain.Persona {
	out := make([]domain.Persona, 0, len(table))
	for _, key := range order {
		out = append(out, table[key])
	}
	return out
}
