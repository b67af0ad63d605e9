// Package scoring implements the rule tables behind the clinical risk
// endpoints: numeric coercion of raw request values, the fail-fast field
// guard, staged single-vital classifiers and the weighted triage scorer.
//
// Everything here is pure. Tables are package-level values and are never
// mutated after initialization, so they are safe for concurrent use.
package scoring
