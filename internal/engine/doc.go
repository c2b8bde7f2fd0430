// Package engine contains the synchronization and reconciliation core of the
// mirror: the lookback window computation, the two-pass candidate scan, the
// per-candidate upsert decisions, and the nightly full-population
// reconciliation with its delete grace-period state machine.
//
// The engines hold no state between invocations. Everything they need to
// decide is read from the source and the destination ledger at run time, so
// overlapping or interrupted runs converge on the ledger's true state.
package engine
