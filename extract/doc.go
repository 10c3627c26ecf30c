// Package extract implements the deterministic pattern extractor: a
// synchronous regex scan of raw conversation text for structured intelligence
// (phone numbers, bank accounts, payment handles, phishing links, email
// addresses, reference IDs, suspicious keywords).
//
// The extractor performs no I/O, uses no randomness, and runs in time linear
// in the input. Malformed input never produces an error — unmatched text
// simply yields no entries. Pattern tables live in a Config so tests can
// substitute minimal deterministic tables.
package extract
