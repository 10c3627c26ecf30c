// Package core defines the domain model shared by every Honeymesh component:
// inbound turns, intelligence records and their normalization rules, candidate
// results produced by engagement strategies, durable session state, and the
// final intelligence report.
//
// The package has no dependencies beyond the standard library so that leaf
// packages (extractor, strategies, stores, sinks) can all build on it without
// cycles. Higher layers (agent, engine, server) compose these types; they
// never define their own copies of the domain vocabulary.
package core
