// Package sync implements the sync coordinator (C4): causal conflict
// resolution between devices and the websocket broker that carries
// deltas between them.
package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/hx-helix/memplane/internal/sync/clock"
)

// Entity is the causal version of one record as seen by a single
// device: the record's ID plus the clock and timestamp it was last
// written with. It carries no payload and no originating device ID.
type Entity struct {
	ID           uuid.UUID
	Clock        clock.VectorClock
	LastModified time.Time
}

// ResolutionKind distinguishes a causal winner from a same-tick
// last-write-wins tie-break.
type ResolutionKind int

const (
	// NoConflict means one side strictly happened-before the other (the
	// later side is kept verbatim), or the two clocks are equal (the
	// local side is kept).
	NoConflict ResolutionKind = iota
	// LastWriteWins means the two sides were concurrent and the winner
	// was chosen by wall-clock timestamp (ties going to remote).
	LastWriteWins
)

// Resolution is the outcome of ResolveConflict: which entity wins and
// why.
type Resolution struct {
	Kind   ResolutionKind
	Winner Entity
	Clock  clock.VectorClock
}

// ResolveConflict is the deterministic total function from spec §4.4:
// causal order wins outright; equal clocks keep local; concurrent writes
// fall back to last-write-wins by LastModified, with equal timestamps
// going to remote.
func ResolveConflict(local, remote Entity) Resolution {
	switch {
	case local.Clock.HappensBefore(remote.Clock):
		return Resolution{Kind: NoConflict, Winner: remote, Clock: remote.Clock}
	case remote.Clock.HappensBefore(local.Clock):
		return Resolution{Kind: NoConflict, Winner: local, Clock: local.Clock}
	case local.Clock.Equal(remote.Clock):
		// Open Question 3: equal clocks keep the local copy rather than
		// treating an exact clock match as a conflict to adjudicate.
		return Resolution{Kind: NoConflict, Winner: local, Clock: local.Clock}
	default:
		merged := local.Clock.Merge(remote.Clock)
		if local.LastModified.After(remote.LastModified) {
			return Resolution{Kind: LastWriteWins, Winner: local, Clock: merged}
		}
		return Resolution{Kind: LastWriteWins, Winner: remote, Clock: merged}
	}
}
