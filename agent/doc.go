// Package agent implements the conversational leaf of a fleet: an Agent owns
// an ordered message transcript, a system prompt and an optional tool
// registry, and completes turns against a bound provider adapter. Agents are
// constructed once and reused across compositions; their transcripts
// accumulate until explicitly cleared.
package agent
