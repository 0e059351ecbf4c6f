// Package agentfleet provides a high-level façade over the agent and fleet
// packages for building multi-agent systems atop hosted LLM providers. Most
// applications interact with this package by:
//  1. Creating an AgentFleet via New() (optionally overriding logging,
//     observability and generation defaults)
//  2. Constructing agents bound to provider adapters and grouping them into
//     fleets (or nested fleets-of-fleets)
//  3. Composing the fleet sequentially or concurrently
//
// The façade only binds shared ambient services (logger, observer, default
// generation parameters) to the constructed agents and fleets; orchestration
// itself lives in the fleet package.
package agentfleet

import (
	"github.com/hupe1980/agentfleet/agent"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/fleet"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/provider"
)

// Options configures the AgentFleet instance.
type Options struct {
	// Logger receives structured diagnostics (defaults to NoOp).
	Logger logging.Logger
	// Observer receives composition events (defaults to NoOp).
	Observer core.Observer
	// Params are the default generation parameters applied by Params().
	Params provider.GenerationParams
}

// AgentFleet is the high-level façade binding shared ambient services to the
// agents and fleets it constructs.
type AgentFleet struct {
	opts Options
}

// New creates a new AgentFleet instance with optional overrides.
func New(optFns ...func(o *Options)) *AgentFleet {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Observer: core.NoOpObserver{},
		Params:   provider.DefaultGenerationParams(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &AgentFleet{opts: opts}
}

// NewAgent constructs an agent bound to the shared logger and observer.
func (af *AgentFleet) NewAgent(name string, adapter provider.Adapter, optFns ...func(o *agent.Options)) *agent.Agent {
	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Logger = af.opts.Logger
		o.Observer = af.opts.Observer
	}}, optFns...)
	return agent.New(name, adapter, fns...)
}

// NewFleet constructs a fleet bound to the shared logger and observer.
func (af *AgentFleet) NewFleet(name string, participants []fleet.Participant, optFns ...func(o *fleet.Options)) *fleet.Fleet {
	fns := append([]func(o *fleet.Options){func(o *fleet.Options) {
		o.Logger = af.opts.Logger
		o.Observer = af.opts.Observer
	}}, optFns...)
	return fleet.New(name, participants, fns...)
}

// Params returns the configured default generation parameters.
func (af *AgentFleet) Params() provider.GenerationParams {
	return af.opts.Params
}
