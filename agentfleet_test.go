package agentfleet

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/agentfleet/agent"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/fleet"
	"github.com/hupe1980/agentfleet/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureObserver struct {
	mu     sync.Mutex
	events []core.Event
}

func (c *captureObserver) OnEvent(ev core.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureObserver) types() map[core.EventType]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[core.EventType]int)
	for _, ev := range c.events {
		out[ev.Type]++
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	af := New()

	params := af.Params()
	assert.Equal(t, 0.0, params.Temperature)
	assert.Equal(t, int64(1024), params.MaxTokens)
}

func TestNewOverridesParams(t *testing.T) {
	af := New(func(o *Options) {
		o.Params = provider.GenerationParams{Temperature: 0.7, MaxTokens: 2048}
	})

	params := af.Params()
	assert.Equal(t, 0.7, params.Temperature)
	assert.Equal(t, int64(2048), params.MaxTokens)
}

func TestFacadeBindsSharedObserver(t *testing.T) {
	obs := &captureObserver{}
	af := New(func(o *Options) { o.Observer = obs })

	adapter := provider.NewMockAdapter("test-model")
	adapter.AddResponse("task", "done")

	a := af.NewAgent("Worker", adapter)
	f := af.NewFleet("Team", []fleet.Participant{a}, func(o *fleet.Options) {
		o.Synthesize = false
	})

	outcome, err := f.Compose(context.Background(), "test-model", core.NewUserMessage("task"), fleet.ModeConcurrent, af.Params())
	require.NoError(t, err)
	require.Len(t, outcome.Responses, 1)
	assert.Equal(t, "done", outcome.Responses[0].Text())

	counts := obs.types()
	// Compose start from the fleet plus turn events from both the fleet and
	// the agent it constructed.
	assert.Equal(t, 1, counts[core.EventComposeStart])
	assert.GreaterOrEqual(t, counts[core.EventTurnStart], 1)
	assert.GreaterOrEqual(t, counts[core.EventTurnComplete], 1)
}

func TestFacadeForwardsCallerOptions(t *testing.T) {
	af := New()

	a := af.NewAgent("Worker", provider.NewMockAdapter("test-model"), func(o *agent.Options) {
		o.Description = "drafts replies"
	})
	assert.Equal(t, "drafts replies", a.Description())

	f := af.NewFleet("Team", []fleet.Participant{a}, func(o *fleet.Options) {
		o.Description = "answer support tickets"
	})
	assert.Equal(t, "answer support tickets", f.Description())
}
