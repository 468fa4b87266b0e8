package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
	"github.com/convoplay/convoplay/internal/persona"
	"github.com/convoplay/convoplay/internal/provider"
)

// TurnRecorder receives completed turns for the optional archive.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, turn domain.ArchivedTurn) error
}

// Conversation owns one session's message history, config and stats.
// The mutex serializes turns: a second submit blocks until the
// outstanding provider call finishes.
type Conversation struct {
	mu        sync.Mutex
	id        uuid.UUID
	cfg       domain.SessionConfig
	messages  []domain.Message
	startedAt time.Time
	lastSeen  time.Time
	turns     int
	cost      decimal.Decimal

	models   *ModelManager
	catalog  *Catalog
	recorder TurnRecorder
}

func NewConversation(id uuid.UUID, models *ModelManager, catalog *Catalog, recorder TurnRecorder) *Conversation {
	now := time.Now()
	return &Conversation{
		id: id,
		cfg: domain.SessionConfig{
			ModelKey:     config.DefaultModel,
			PersonaKey:   config.DefaultPersona,
			Temperature:  config.DefaultTemperature,
			MemoryWindow: config.DefaultMemoryWindow,
		},
		startedAt: now,
		lastSeen:  now,
		cost:      decimal.Zero,
		models:    models,
		catalog:   catalog,
		recorder:  recorder,
	}
}

func (c *Conversation) ID() uuid.UUID {
	return c.id
}

// Submit runs one user turn: the request sent upstream is the persona
// system prompt, the last memory_window stored messages, then the new
// user message. The user message stays in the transcript even when the
// provider call fails.
func (c *Conversation) Submit(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := persona.Lookup(c.cfg.PersonaKey)
	if err != nil {
		return "", err
	}

	prior := c.messages
	window := prior
	if len(window) > c.cfg.MemoryWindow {
		window = window[len(window)-c.cfg.MemoryWindow:]
	}

	prompt := make([]provider.Message, 0, len(window)+2)
	prompt = append(prompt, provider.Message{Role: domain.RoleSystem, Content: p.SystemPrompt})
	for _, m := range window {
		prompt = append(prompt, provider.Message{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, provider.Message{Role: domain.RoleUser, Content: text})

	c.messages = append(c.messages, domain.Message{
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	})

	reply, model, err := c.models.Generate(ctx, c.cfg.ModelKey, c.cfg.Temperature, prompt)
	if err != nil {
		return "", err
	}

	c.messages = append(c.messages, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   reply.Text,
		CreatedAt: time.Now(),
	})
	c.turns++

	turnCost := c.priceTurn(ctx, model, reply.Usage)
	c.cost = c.cost.Add(turnCost)

	if c.recorder != nil {
		turn := domain.ArchivedTurn{
			SessionID:        c.id,
			ModelKey:         c.cfg.ModelKey,
			PersonaKey:       c.cfg.PersonaKey,
			UserText:         text,
			AssistantText:    reply.Text,
			PromptTokens:     reply.Usage.PromptTokens,
			CompletionTokens: reply.Usage.CompletionTokens,
			Cost:             turnCost,
			CreatedAt:        time.Now(),
		}
		if err := c.recorder.RecordTurn(ctx, turn); err != nil {
			slog.Error("record turn", "error", err, "session", c.id)
		}
	}

	return reply.Text, nil
}

// priceTurn resolves the cost of a turn. OpenRouter reports total_cost
// directly; otherwise the catalog pricing is applied to the token
// counts. Models outside the catalog (Gemini) price as zero.
func (c *Conversation) priceTurn(ctx context.Context, model domain.LLMModel, usage provider.Usage) decimal.Decimal {
	if usage.TotalCost > 0 {
		return decimal.NewFromFloat(usage.TotalCost)
	}
	if c.catalog == nil || model.Provider != domain.ProviderOpenRouter {
		return decimal.Zero
	}
	listed, err := c.catalog.GetModel(ctx, model.ModelID)
	if err != nil {
		slog.Warn("catalog lookup", "error", err, "model", model.ModelID)
		return decimal.Zero
	}
	return CalculateCost(usage.PromptTokens, usage.CompletionTokens, listed.PromptPrice, listed.CompletionPrice)
}

// UpdateConfig applies a partial config change. Validation is
// all-or-nothing: on any error the existing config is untouched.
func (c *Conversation) UpdateConfig(patch domain.ConfigPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cfg

	if patch.PersonaKey != nil {
		if _, err := persona.Lookup(*patch.PersonaKey); err != nil {
			return err
		}
		next.PersonaKey = *patch.PersonaKey
	}
	if patch.ModelKey != nil {
		if _, err := c.models.Lookup(*patch.ModelKey); err != nil {
			return err
		}
		next.ModelKey = *patch.ModelKey
	}
	if patch.Temperature != nil {
		if *patch.Temperature < config.TemperatureMin || *patch.Temperature > config.TemperatureMax {
			return domain.ErrTemperatureRange
		}
		next.Temperature = *patch.Temperature
	}
	if patch.MemoryWindow != nil {
		if *patch.MemoryWindow < config.MemoryWindowMin || *patch.MemoryWindow > config.MemoryWindowMax {
			return domain.ErrMemoryWindow
		}
		next.MemoryWindow = *patch.MemoryWindow
	}

	c.cfg = next
	return nil
}

// Reset clears the transcript. Accumulated cost is money already spent
// and survives a reset; the start time marks the session, not the
// transcript.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.turns = 0
}

func (c *Conversation) Config() domain.SessionConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *Conversation) History() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Stats() domain.SessionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SessionStats{
		Messages:  len(c.messages),
		Turns:     c.turns,
		StartedAt: c.startedAt,
		Cost:      c.cost,
	}
}

func (c *Conversation) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
}

func (c *Conversation) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}
