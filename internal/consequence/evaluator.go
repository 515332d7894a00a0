// Package consequence turns finished conversations into lasting world
// changes: mood shifts, new goals, narrative threads, and events deferred
// until some condition holds.
package consequence

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/event"
	"github.com/pixil98/go-story/internal/world"
)

// StateChange is one character adjustment the provider asked for.
type StateChange struct {
	CharacterID string `json:"character_id"`
	Mood        string `json:"mood,omitempty"`
	NewGoal     string `json:"new_goal,omitempty"`
}

// ThreadUpdate names a narrative thread to create, nudge, or resolve.
type ThreadUpdate struct {
	ID           string `json:"id"`
	Summary      string `json:"summary,omitempty"`
	TensionDelta int    `json:"tension_delta,omitempty"`
	Resolve      bool   `json:"resolve,omitempty"`
}

// DeferredDescriptor is a future event the provider wants shelved until
// its condition holds.
type DeferredDescriptor struct {
	Description string `json:"description"`
	Condition   string `json:"condition"`
}

// Result is everything a conversation changed about the world.
type Result struct {
	Summary      string               `json:"summary"`
	StateChanges []StateChange        `json:"state_changes,omitempty"`
	Threads      []ThreadUpdate       `json:"threads,omitempty"`
	Deferred     []DeferredDescriptor `json:"deferred,omitempty"`
}

// Provider judges what a finished conversation should change.
type Provider interface {
	Consequences(ctx context.Context, conv *world.Conversation, window string) (*Result, error)
}

// Evaluator applies a provider's judgment to the world in a fixed order:
// character state first, then the chronicle record, then threads, then
// deferred events.
type Evaluator struct {
	state    *world.State
	chron    *chronicle.Chronicle
	queue    *event.Queue
	bus      *event.Bus
	provider Provider
	logger   *slog.Logger
}

// NewEvaluator wires an evaluator. A nil provider disables evaluation
// without disabling the caller.
func NewEvaluator(state *world.State, chron *chronicle.Chronicle, queue *event.Queue, bus *event.Bus, provider Provider, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		state:    state,
		chron:    chron,
		queue:    queue,
		bus:      bus,
		provider: provider,
		logger:   logger,
	}
}

// Evaluate runs the pipeline for one finished conversation and returns
// the provider's result for caller-side reporting. Provider failures are
// logged and swallowed: a lost consequence pass must never take the
// session down. A nil return means nothing was applied.
func (e *Evaluator) Evaluate(ctx context.Context, conv *world.Conversation, gameTime time.Duration) *Result {
	if e.provider == nil || conv == nil {
		return nil
	}

	result, err := e.provider.Consequences(ctx, conv, e.chron.ContextWindow(chronicle.DefaultWindowBudget))
	if err != nil {
		e.logger.Warn("consequence evaluation failed", "character", conv.CharacterID, "error", err)
		return nil
	}
	if result == nil {
		return nil
	}

	e.applyStateChanges(result.StateChanges)
	e.recordConversation(conv, result, gameTime)
	e.applyThreads(result.Threads)
	e.deferEvents(result.Deferred)
	return result
}

func (e *Evaluator) applyStateChanges(changes []StateChange) {
	for _, sc := range changes {
		c := e.state.Character(sc.CharacterID)
		if c == nil {
			e.logger.Warn("consequence for unknown character", "character", sc.CharacterID)
			continue
		}

		patch := world.StatePatch{}
		if sc.Mood != "" {
			mood := sc.Mood
			patch.Mood = &mood
		}
		if sc.NewGoal != "" {
			goals := append(append([]string{}, c.State.Goals...), sc.NewGoal)
			patch.Goals = &goals
		}
		e.state.ApplyEffect(world.CharacterStateChange{CharacterID: sc.CharacterID, Changes: patch})
	}
}

func (e *Evaluator) recordConversation(conv *world.Conversation, result *Result, gameTime time.Duration) {
	entry := chronicle.Entry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		GameTime:   gameTime,
		Type:       chronicle.EntryConversation,
		Zone:       e.state.Player.Zone,
		Summary:    result.Summary,
		Characters: []string{conv.CharacterID},
	}
	for _, tu := range result.Threads {
		entry.Threads = append(entry.Threads, tu.ID)
	}

	// Threads named by the result must exist before the entry links to
	// them.
	for _, tu := range result.Threads {
		if e.chron.Thread(tu.ID) == nil {
			summary := tu.Summary
			if summary == "" {
				summary = tu.ID
			}
			e.chron.AddThread(tu.ID, summary, chronicle.DefaultTension)
		}
	}

	e.chron.Append(entry)
	event.Publish(e.bus, event.EntryRecorded{Entry: entry})
}

func (e *Evaluator) applyThreads(updates []ThreadUpdate) {
	for _, tu := range updates {
		if tu.Resolve {
			e.chron.ResolveThread(tu.ID)
			continue
		}
		if tu.TensionDelta != 0 {
			e.chron.UpdateThreadTension(tu.ID, tu.TensionDelta)
		}
		if tu.Summary != "" {
			e.chron.UpdateThreadSummary(tu.ID, tu.Summary)
		}
	}
}

func (e *Evaluator) deferEvents(descriptors []DeferredDescriptor) {
	for _, d := range descriptors {
		e.queue.Defer(event.DeferredEvent{
			Event: event.GameEvent{
				ID:           uuid.New().String(),
				Significance: event.SignificanceMinor,
				Description:  d.Description,
			},
			Condition: d.Condition,
			CreatedAt: e.state.PlayTime,
		})
	}
}
