package layer

import "sync/atomic"

// Stats counts reconciliation and async-load activity. All fields are
// atomic so they can be scraped while reconciliation or background
// loads are running.
type Stats struct {
	// Reconciles is the number of completed SetLayers passes
	// (no-op resubmissions excluded).
	Reconciles atomic.Uint64

	// Matched counts layers that inherited state from a predecessor.
	Matched atomic.Uint64

	// Initialized counts freshly initialized layers.
	Initialized atomic.Uint64

	// Finalized counts retired layers.
	Finalized atomic.Uint64

	// LayerErrors counts caught lifecycle-hook errors.
	LayerErrors atomic.Uint64

	// AsyncStarted/AsyncCompleted/AsyncSuperseded/AsyncFailed count
	// async property loads by outcome.
	AsyncStarted    atomic.Uint64
	AsyncCompleted  atomic.Uint64
	AsyncSuperseded atomic.Uint64
	AsyncFailed     atomic.Uint64

	// LiveLayers is the size of the authoritative layer list after the
	// most recent pass.
	LiveLayers atomic.Int64
}
