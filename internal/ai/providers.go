package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/consequence"
	"github.com/pixil98/go-story/internal/event"
	"github.com/pixil98/go-story/internal/world"
)

const (
	tickMaxTokens        = 1024
	consequenceMaxTokens = 768
	compressionMaxTokens = 256
	conditionMaxTokens   = 64
)

// TickProvider asks the model what happens in the world when a tick
// fires.
type TickProvider struct {
	client *Client
	logger *slog.Logger
}

func NewTickProvider(client *Client, logger *slog.Logger) *TickProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &TickProvider{client: client, logger: logger}
}

type tickReply struct {
	Events []struct {
		Description  string            `json:"description"`
		Significance string            `json:"significance"`
		Effects      []json.RawMessage `json:"effects"`
		Chronicle    *struct {
			Type       string   `json:"type"`
			Summary    string   `json:"summary"`
			Zone       string   `json:"zone"`
			Characters []string `json:"characters"`
			Threads    []string `json:"threads"`
		} `json:"chronicle"`
	} `json:"events"`
}

// TickEvents implements event.TickEventProvider.
func (p *TickProvider) TickEvents(ctx context.Context, tc event.TickContext) ([]event.GameEvent, error) {
	prompt, err := render(tickPrompt, tc)
	if err != nil {
		return nil, err
	}

	text, err := p.client.Complete(ctx, tickSystemPrompt, prompt, tickMaxTokens)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	if err := validateReply(tickSchema, raw); err != nil {
		return nil, err
	}

	var reply tickReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("decoding tick reply: %w", err)
	}

	var events []event.GameEvent
	for _, re := range reply.Events {
		effects, failed := DecodeEffects(re.Effects)
		if failed > 0 {
			p.logger.Warn("dropped undecodable effects", "count", failed, "event", re.Description)
		}

		e := event.GameEvent{
			ID:           uuid.New().String(),
			Significance: event.Significance(re.Significance),
			Description:  re.Description,
			Effects:      effects,
		}

		if re.Chronicle != nil {
			entryType := chronicle.EntryType(re.Chronicle.Type)
			if entryType == "" {
				entryType = chronicle.EntryEvent
			}
			zone := re.Chronicle.Zone
			if zone == "" {
				zone = tc.PlayerZone
			}
			e.ChronicleEntry = &chronicle.Entry{
				ID:         uuid.New().String(),
				Timestamp:  time.Now(),
				GameTime:   tc.GameTime,
				Type:       entryType,
				Zone:       zone,
				Summary:    re.Chronicle.Summary,
				Characters: re.Chronicle.Characters,
				Threads:    re.Chronicle.Threads,
			}
		}

		events = append(events, e)
	}

	return events, nil
}

// ConsequenceProvider judges what a finished conversation changed.
type ConsequenceProvider struct {
	client *Client
	state  *world.State
}

func NewConsequenceProvider(client *Client, state *world.State) *ConsequenceProvider {
	return &ConsequenceProvider{client: client, state: state}
}

// Consequences implements consequence.Provider.
func (p *ConsequenceProvider) Consequences(ctx context.Context, conv *world.Conversation, window string) (*consequence.Result, error) {
	name := conv.CharacterID
	if c := p.state.Character(conv.CharacterID); c != nil {
		name = c.Identity.Name
	}

	prompt, err := render(consequencePrompt, struct {
		CharacterName string
		Turns         []world.ConversationTurn
		Window        string
	}{name, conv.Turns, window})
	if err != nil {
		return nil, err
	}

	text, err := p.client.Complete(ctx, consequenceSystemPrompt, prompt, consequenceMaxTokens)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	if err := validateReply(consequenceSchema, raw); err != nil {
		return nil, err
	}

	var result consequence.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decoding consequence reply: %w", err)
	}
	return &result, nil
}

// Compressor folds old chronicle entries into prose.
type Compressor struct {
	client *Client
}

func NewCompressor(client *Client) *Compressor {
	return &Compressor{client: client}
}

// Compress implements chronicle.CompressionProvider.
func (c *Compressor) Compress(ctx context.Context, formattedEntries, recentSummary string) (string, error) {
	prompt, err := render(compressionPrompt, struct {
		Entries       string
		RecentSummary string
	}{formattedEntries, recentSummary})
	if err != nil {
		return "", err
	}

	text, err := c.client.Complete(ctx, compressionSystemPrompt, prompt, compressionMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ConditionChecker judges whether a deferred event's trigger condition
// holds.
type ConditionChecker struct {
	client *Client
}

func NewConditionChecker(client *Client) *ConditionChecker {
	return &ConditionChecker{client: client}
}

// Check returns whether the free-text condition holds in the given
// situation.
func (c *ConditionChecker) Check(ctx context.Context, condition string, tc event.TickContext) (bool, error) {
	prompt, err := render(conditionPrompt, struct {
		Condition string
		event.TickContext
	}{condition, tc})
	if err != nil {
		return false, err
	}

	text, err := c.client.Complete(ctx, conditionSystemPrompt, prompt, conditionMaxTokens)
	if err != nil {
		return false, err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return false, err
	}
	if err := validateReply(conditionSchema, raw); err != nil {
		return false, err
	}

	var reply struct {
		Holds bool `json:"holds"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return false, fmt.Errorf("decoding condition reply: %w", err)
	}
	return reply.Holds, nil
}
