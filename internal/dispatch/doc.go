// Package dispatch runs storage calls on a bounded worker pool and hands back
// futures, so callers never block their own goroutine on database I/O.
//
// # Ordering
//
// Units submitted straight to the pool may run in any order. Units submitted
// through the same Lane run one at a time in submission order, so a caller
// that routes its calls through its own lane observes its earlier writes:
//
//	lane := pool.Lane(sessionID)
//	created := dispatch.SubmitInLane(ctx, lane, func(ctx context.Context) (int64, error) {
//	    return store.CreateNoteWithDetails(ctx, note, items, tags)
//	})
//	loaded := dispatch.SubmitInLane(ctx, lane, func(ctx context.Context) (*types.NoteWithDetails, error) {
//	    return store.LoadNoteByID(ctx, note.ID)
//	})
//
// # Cancellation
//
// A unit whose context is done before it reaches a worker never runs and
// resolves to the context error. Once running it receives a context without
// cancellation, matching the storage rule that a begun transaction always
// finishes.
package dispatch
