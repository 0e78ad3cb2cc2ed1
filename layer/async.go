package layer

import (
	"log/slog"
	"sync"

	deck "github.com/ballon3/deck.gl"
)

// EmptyData is the value an async data prop exposes before its first
// load resolves. It is shared and must not be mutated.
var EmptyData = []any{}

// AsyncState is the per-property record of the async loading state
// machine. A property whose incoming value is a string reference is
// loaded in the background; the record tracks which load is current so
// stale completions are discarded (last-request-wins).
type AsyncState struct {
	mu sync.Mutex

	// lastValue is the last raw prop value observed, used for change
	// detection.
	lastValue any

	// value is the resolved data currently exposed to the layer.
	value any

	// loadCount increases by one for every load started. A completion
	// only installs its result if its captured count still equals
	// loadCount.
	loadCount uint64

	// outstanding is true while a load is in flight.
	outstanding bool
}

// Loading reports whether a load is in flight.
func (a *AsyncState) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outstanding
}

// Value returns the resolved value, or EmptyData if nothing resolved
// yet.
func (a *AsyncState) Value() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.value == nil {
		return EmptyData
	}
	return a.value
}

// setAsyncProp observes a new raw value for an async-capable prop.
//
// Unchanged values are ignored. Inline (non-string) values are
// installed synchronously. String references start a background load;
// the caller must treat the prop's data as "deferred changed": the
// dataChanged flag is raised only when the load resolves.
//
// Returns true if a background load was started.
func (s *InternalState) setAsyncProp(name string, value any) bool {
	st, _ := s.asyncProps.LoadOrCompute(name, func() *AsyncState {
		return &AsyncState{}
	})

	st.mu.Lock()
	if equalIdentity(st.lastValue, value) {
		st.mu.Unlock()
		return false
	}
	st.lastValue = value

	url, isRef := value.(string)
	fetcher := s.fetcher
	if !isRef || fetcher == nil {
		// Inline data: install immediately and bump the counter so a
		// load still in flight for the previous reference arrives stale
		// and cannot overwrite the newer inline value. A non-loadable
		// string is passed through unchanged when no fetcher is
		// configured.
		st.value = value
		st.outstanding = false
		st.loadCount++
		st.mu.Unlock()
		return false
	}

	st.loadCount++
	count := st.loadCount
	st.outstanding = true
	st.mu.Unlock()

	if s.stats != nil {
		s.stats.AsyncStarted.Add(1)
	}
	// The fetcher is captured here, on the reconciliation thread: a
	// state transfer may swap the field while the load is in flight.
	go s.load(fetcher, st, name, url, count)
	return true
}

// load fetches one reference and runs the completion. It runs on its
// own goroutine and may finish in any order relative to other loads and
// to later reconciliation passes; the count comparison is the sole
// supersession mechanism.
func (s *InternalState) load(fetcher deck.Fetcher, st *AsyncState, name, url string, count uint64) {
	result, err := fetcher.Fetch(s.loadCtx, url)

	st.mu.Lock()
	if count != st.loadCount {
		// A newer load started after this one; discard silently.
		st.mu.Unlock()
		deck.Logger().Debug("async load superseded",
			slog.String("prop", name), slog.String("url", url))
		if s.stats != nil {
			s.stats.AsyncSuperseded.Add(1)
		}
		return
	}
	st.outstanding = false
	if err != nil {
		// Failed loads are deliberately not escalated: no error flag,
		// no retry. The displayed value stays at the prior snapshot.
		st.mu.Unlock()
		deck.Logger().Warn("async load failed",
			slog.String("prop", name), slog.String("url", url),
			slog.Any("error", err))
		if s.stats != nil {
			s.stats.AsyncFailed.Add(1)
		}
		return
	}
	st.value = result
	st.mu.Unlock()

	s.mergeFlags(ChangeFlags{Data: "async " + name + " loaded"})
	s.SetNeedsRedraw("async " + name + " loaded")

	if owner := s.owner.Load(); owner != nil {
		if cb := owner.props.OnDataLoad(); cb != nil {
			cb(result)
		}
	}
	// Counted last: once the counter reads complete, the installed value,
	// flags and callback are all observable.
	if s.stats != nil {
		s.stats.AsyncCompleted.Add(1)
	}
}

// asyncValue returns the resolved value for a prop if the prop is under
// async management.
func (s *InternalState) asyncValue(name string) (any, bool) {
	st, ok := s.asyncProps.Load(name)
	if !ok {
		return nil, false
	}
	return st.Value(), true
}

// IsLoading reports whether an async load for the named prop is in
// flight.
func (s *InternalState) IsLoading(name string) bool {
	st, ok := s.asyncProps.Load(name)
	return ok && st.Loading()
}
