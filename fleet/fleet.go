package fleet

import (
	"context"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/provider"
)

// Mode selects the composition protocol.
type Mode string

const (
	// ModeSequential pipes each participant's labeled output into the next
	// participant's input.
	ModeSequential Mode = "sequential"
	// ModeConcurrent runs all participants against the same initial message
	// at once, optionally synthesizing the results.
	ModeConcurrent Mode = "concurrent"
)

// Participant is one member of a fleet: either a conversational agent (leaf)
// or a nested fleet (composite). The two implementations form a closed set;
// composition logic only depends on this contract.
type Participant interface {
	// Name returns the participant's display label.
	Name() string

	// Description returns the participant's purpose description.
	Description() string

	// Contribute produces the participant's response to the running message.
	// A leaf agent completes exactly one turn; a nested fleet runs its own
	// sequential composition.
	Contribute(ctx context.Context, model string, msg core.Message, params provider.GenerationParams) (*core.Response, error)

	// FirstAdapter returns a bound provider adapter, descending into nested
	// participants, or nil when none is bound.
	FirstAdapter() provider.Adapter
}

// Display palette cycled over participants, observability only.
var palette = []string{"magenta", "cyan", "yellow", "green", "blue", "red"}

// Options configures a Fleet instance.
type Options struct {
	// Description states the fleet's objective; it is embedded into the
	// synthesis prompt as the team goal.
	Description string
	// Synthesize merges concurrent results into a single response. Only
	// meaningful in concurrent mode.
	Synthesize bool
	Logger     logging.Logger
	Observer   core.Observer
}

// Fleet is an ordered composition of participants. The participant list is
// fixed at construction; composition never mutates membership, only drives
// each participant's own conversation state.
type Fleet struct {
	name         string
	description  string
	synthesize   bool
	participants []Participant
	colors       []string // index-aligned with participants
	logger       logging.Logger
	observer     core.Observer
}

// New creates a fleet over the given participants.
func New(name string, participants []Participant, optFns ...func(o *Options)) *Fleet {
	opts := Options{
		Synthesize: true,
		Logger:     logging.NoOpLogger{},
		Observer:   core.NoOpObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	colors := make([]string, len(participants))
	for i := range participants {
		colors[i] = palette[i%len(palette)]
	}

	return &Fleet{
		name:         name,
		description:  opts.Description,
		synthesize:   opts.Synthesize,
		participants: participants,
		colors:       colors,
		logger:       opts.Logger,
		observer:     opts.Observer,
	}
}

// Name returns the fleet's display label.
func (f *Fleet) Name() string { return f.name }

// Description returns the fleet's objective description.
func (f *Fleet) Description() string { return f.description }

// Participants returns a copy of the ordered participant list.
func (f *Fleet) Participants() []Participant {
	out := make([]Participant, len(f.participants))
	copy(out, f.participants)
	return out
}

// Color returns the display color assigned to the participant at index i.
func (f *Fleet) Color(i int) string {
	if i < 0 || i >= len(f.colors) {
		return "white"
	}
	return f.colors[i]
}

// Contribute satisfies the Participant contract for nested fleets: a nested
// fleet always contributes via its own sequential composition, regardless of
// the outer fleet's mode.
func (f *Fleet) Contribute(
	ctx context.Context,
	model string,
	msg core.Message,
	params provider.GenerationParams,
) (*core.Response, error) {
	return f.ComposeSequential(ctx, model, msg, params)
}

// FirstAdapter returns the first bound provider adapter found by walking the
// participant tree in declaration order, or nil when no participant
// (recursively) has one.
func (f *Fleet) FirstAdapter() provider.Adapter {
	for _, p := range f.participants {
		if a := p.FirstAdapter(); a != nil {
			return a
		}
	}
	return nil
}

// Outcome is the result of a composition run. Exactly one field is set:
// Response for sequential or synthesized concurrent runs, Responses
// (index-aligned with the participant list) for concurrent runs without
// synthesis.
type Outcome struct {
	Response  *core.Response
	Responses []*core.Response
}

// Compose dispatches to the protocol selected by mode. Any unrecognized mode
// fails before a single participant is invoked.
func (f *Fleet) Compose(
	ctx context.Context,
	model string,
	msg core.Message,
	mode Mode,
	params provider.GenerationParams,
) (*Outcome, error) {
	switch mode {
	case ModeSequential, ModeConcurrent:
	default:
		return nil, &core.InvalidModeError{Mode: string(mode)}
	}

	f.observer.OnEvent(core.Event{
		Type:    core.EventComposeStart,
		Fleet:   f.name,
		Model:   model,
		Mode:    string(mode),
		Content: core.Excerpt(msg.Text()),
		Time:    time.Now(),
	})

	start := time.Now()

	var (
		outcome *Outcome
		err     error
	)
	if mode == ModeSequential {
		var resp *core.Response
		resp, err = f.ComposeSequential(ctx, model, msg, params)
		outcome = &Outcome{Response: resp}
	} else {
		outcome, err = f.ComposeConcurrent(ctx, model, msg, params)
	}

	if err != nil {
		f.logger.Error("composition failed", "fleet", f.name, "mode", string(mode), "error", err.Error())
	} else {
		f.logger.Info("composition completed",
			"fleet", f.name,
			"mode", string(mode),
			"participants", len(f.participants),
			"duration", time.Since(start),
		)
	}

	if err != nil {
		return nil, err
	}
	return outcome, nil
}
