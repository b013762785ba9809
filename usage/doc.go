// Package usage provides the append-only usage ledger for AI generation
// calls and the aggregate statistics computed over it.
//
// Every store delegates aggregation to [Aggregate] so that the hit-rate and
// token arithmetic is identical regardless of backing storage.
package usage
