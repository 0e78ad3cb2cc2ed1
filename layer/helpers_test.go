package layer

import (
	"bytes"
	stdctx "context"
	"log/slog"
	"sync"
	"testing"
	"time"

	deck "github.com/ballon3/deck.gl"
)

// testBehavior is a recording Behavior with injectable failures.
type testBehavior struct {
	mu            sync.Mutex
	initCalls     int
	updateCalls   int
	finalizeCalls int
	lastChanges   ChangeFlags

	initErr     error
	updateErr   error
	finalizeErr error

	should   func(UpdateParams) bool
	onUpdate func(UpdateParams)
}

func (b *testBehavior) InitializeState(l *Layer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initCalls++
	return b.initErr
}

func (b *testBehavior) ShouldUpdateState(u UpdateParams) bool {
	if b.should != nil {
		return b.should(u)
	}
	return DefaultShouldUpdate(u)
}

func (b *testBehavior) UpdateState(u UpdateParams) error {
	b.mu.Lock()
	b.updateCalls++
	b.lastChanges = u.Changes.clone()
	b.mu.Unlock()
	if b.onUpdate != nil {
		b.onUpdate(u)
	}
	return b.updateErr
}

func (b *testBehavior) FinalizeState(l *Layer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finalizeCalls++
	return b.finalizeErr
}

func (b *testBehavior) counts() (init, update, finalize int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initCalls, b.updateCalls, b.finalizeCalls
}

func (b *testBehavior) changes() ChangeFlags {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastChanges.clone()
}

// compositeBehavior adds sub-layer generation to testBehavior.
type compositeBehavior struct {
	testBehavior
	subs func(l *Layer) []*Layer
}

func (b *compositeBehavior) SubLayers(l *Layer) []*Layer {
	if b.subs != nil {
		return b.subs(l)
	}
	return nil
}

// gateFetcher is a deck.Fetcher whose loads block until released,
// giving tests control over completion order.
type gateFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string]any
	errs    map[string]error
}

func newGateFetcher() *gateFetcher {
	return &gateFetcher{
		gates:   make(map[string]chan struct{}),
		results: make(map[string]any),
		errs:    make(map[string]error),
	}
}

// gate makes loads for url block until release(url).
func (f *gateFetcher) gate(url string) {
	f.mu.Lock()
	f.gates[url] = make(chan struct{})
	f.mu.Unlock()
}

func (f *gateFetcher) release(url string) {
	f.mu.Lock()
	g := f.gates[url]
	delete(f.gates, url)
	f.mu.Unlock()
	if g != nil {
		close(g)
	}
}

func (f *gateFetcher) Fetch(ctx stdctx.Context, url string) (any, error) {
	f.mu.Lock()
	g := f.gates[url]
	result, hasResult := f.results[url]
	err := f.errs[url]
	f.mu.Unlock()

	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if hasResult {
		return result, nil
	}
	return "data:" + url, nil
}

var _ deck.Fetcher = (*gateFetcher)(nil)

// waitFor polls cond until it holds or the test deadline expires.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// captureLogs routes deck logging into a buffer for the test's
// duration.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := deck.Logger()
	deck.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { deck.SetLogger(orig) })
	return &buf
}

// newTestManager returns a manager with an activated viewport.
func newTestManager(opts ...ManagerOption) *Manager {
	m := NewManager(opts...)
	m.ActivateViewport(&deck.Viewport{ID: "test", Width: 640, Height: 480})
	return m
}
