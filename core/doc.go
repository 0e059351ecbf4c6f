// Package core defines the shared data contracts of agentfleet: transcript
// messages, normalized turn responses, the error taxonomy and the
// observability event types consumed across the agent, fleet and provider
// packages. Keeping these shapes in one dependency-free package lets the
// higher layers (agents, fleets, adapters) evolve independently.
package core
