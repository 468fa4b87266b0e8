package domain

// Persona is a named system-prompt preset shaping assistant tone. The
// set is static; personas are never mutated at runtime.
type Persona struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	SystemPrompt string `json:"-"`
}
