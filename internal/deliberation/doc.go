// Package deliberation implements the turn-based deliberation engine: the
// phase state machine, the round/turn scheduler, the per-turn acceptance
// pipeline (generate, validate, bounded refine, commit), the shared memory
// update rules, and verdict synthesis.
//
// Turns are strictly sequential. Every transition produces a new State value
// rather than mutating in place, so intermediate states can be snapshotted or
// inspected freely. External capabilities (content and verdict generation)
// are fallible; their failures are converted into degraded but structurally
// valid results so a run always progresses to completion.
package deliberation
