// Package provider defines the adapter boundary between agentfleet and hosted
// LLM backends.
//
// Core goals:
//   - Expose one capability per backend: send one turn, get text + token counts
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockAdapter)
//
// Vendors (e.g. OpenAI, Anthropic) implement the Adapter interface from this
// package so higher layers (agents, fleets) remain decoupled from vendor SDKs.
// Retry, rate limiting and authentication are adapter concerns; callers assume
// a reliable, already-authenticated backend.
package provider
