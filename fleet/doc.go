// Package fleet implements the composition engine that coordinates multiple
// participants (conversational agents or nested fleets) against a shared
// task. Two protocols are provided: sequential composition pipes a running,
// labeled narrative through every participant in order, and concurrent
// composition fans the same initial message out to all participants at once,
// optionally synthesizing the ordered results into one coherent response.
//
// Nested fleets always contribute via their own sequential composition, even
// when the outer fleet runs concurrently. This is a deliberate policy: only
// the top-level fan-out is parallel, which keeps the total number of in-flight
// provider calls bounded by the outer participant count.
package fleet
