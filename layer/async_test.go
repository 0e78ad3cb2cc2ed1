package layer

import (
	"errors"
	"strings"
	"testing"
)

func TestInlineDataInstalledSynchronously(t *testing.T) {
	m := newTestManager(WithFetcher(newGateFetcher()))
	data := []any{1.0, 2.0}
	if err := m.SetLayers(New(&testBehavior{}, Props{"id": "a", "data": data})); err != nil {
		t.Fatal(err)
	}
	l := m.Layers("a")[0]
	if got, ok := l.Data().([]any); !ok || len(got) != 2 {
		t.Errorf("Data() = %v, want the inline slice", l.Data())
	}
	if got := m.Stats().AsyncStarted.Load(); got != 0 {
		t.Errorf("AsyncStarted = %d, want 0 for inline data", got)
	}
}

func TestStringDataWithoutFetcher(t *testing.T) {
	m := newTestManager() // no fetcher configured
	if err := m.SetLayers(New(&testBehavior{}, Props{"id": "a", "data": "not-a-url"})); err != nil {
		t.Fatal(err)
	}
	l := m.Layers("a")[0]
	if got := l.Data(); got != "not-a-url" {
		t.Errorf("Data() = %v, want the raw string passed through", got)
	}
	if got := m.Stats().AsyncStarted.Load(); got != 0 {
		t.Errorf("AsyncStarted = %d, want 0 without a fetcher", got)
	}
}

func TestAsyncLoadResolvesData(t *testing.T) {
	f := newGateFetcher()
	f.gate("u1")
	m := newTestManager(WithFetcher(f))

	loaded := make(chan any, 1)
	if err := m.SetLayers(New(&testBehavior{}, Props{
		"id":         "a",
		"data":       "u1",
		"onDataLoad": func(v any) { loaded <- v },
	})); err != nil {
		t.Fatal(err)
	}
	l := m.Layers("a")[0]

	// Before the load resolves the layer exposes empty data, and the
	// data flag must not claim a change that has not happened yet.
	if got, ok := l.Data().([]any); !ok || len(got) != 0 {
		t.Errorf("Data() before load = %v, want EmptyData", l.Data())
	}
	if !l.State().IsLoading(PropData) {
		t.Error("IsLoading = false, want true while the fetch is in flight")
	}
	m.NeedsRedraw(true)

	f.release("u1")
	waitFor(t, func() bool { return m.Stats().AsyncCompleted.Load() == 1 }, "load completion")

	if got := l.Data(); got != "data:u1" {
		t.Errorf("Data() = %v, want data:u1", got)
	}
	if l.State().IsLoading(PropData) {
		t.Error("IsLoading = true after completion")
	}
	select {
	case v := <-loaded:
		if v != "data:u1" {
			t.Errorf("onDataLoad received %v, want data:u1", v)
		}
	default:
		t.Error("onDataLoad callback was not invoked")
	}
	if flags := l.ChangeFlags(); !flags.DataChanged() {
		t.Errorf("flags = %s, want dataChanged raised by the completion", flags.String())
	}
	if reason, ok := m.NeedsRedraw(false); !ok || !strings.Contains(reason, "async") {
		t.Errorf("NeedsRedraw = (%q, %v), want an async-load reason", reason, ok)
	}
}

func TestAsyncCompletionDrivesNextUpdate(t *testing.T) {
	f := newGateFetcher()
	f.gate("u1")
	m := newTestManager(WithFetcher(f))
	b := &testBehavior{}

	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}
	f.release("u1")
	waitFor(t, func() bool { return m.Stats().AsyncCompleted.Load() == 1 }, "load completion")

	// Same props next frame: the only pending change is the resolved
	// load, and the update hook must see it as a data change.
	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}
	if _, update, _ := b.counts(); update != 2 {
		t.Fatalf("update ran %d times, want 2", update)
	}
	got := b.changes()
	if !got.DataChanged() {
		t.Errorf("update saw %s, want dataChanged", got.String())
	}
	if got.PropsChanged() || got.ViewportChanged() {
		t.Errorf("unexpected extra flags: %s", got.String())
	}
}

func TestAsyncSupersession(t *testing.T) {
	f := newGateFetcher()
	f.gate("u1")
	f.gate("u2")
	m := newTestManager(WithFetcher(f))
	b := &testBehavior{}

	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}
	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u2"})); err != nil {
		t.Fatal(err)
	}
	l := m.Layers("a")[0]
	if got := m.Stats().AsyncStarted.Load(); got != 2 {
		t.Fatalf("AsyncStarted = %d, want 2", got)
	}

	// The newer request resolves first and wins.
	f.release("u2")
	waitFor(t, func() bool { return m.Stats().AsyncCompleted.Load() == 1 }, "second load completion")
	if got := l.Data(); got != "data:u2" {
		t.Fatalf("Data() = %v, want data:u2", got)
	}

	// The stale first request resolves later and must be discarded.
	f.release("u1")
	waitFor(t, func() bool { return m.Stats().AsyncSuperseded.Load() == 1 }, "stale load discard")
	if got := l.Data(); got != "data:u2" {
		t.Errorf("Data() = %v after stale completion, want data:u2 (last request wins)", got)
	}
	if got := m.Stats().AsyncCompleted.Load(); got != 1 {
		t.Errorf("AsyncCompleted = %d, want 1 (stale load must not count)", got)
	}
}

func TestAsyncLoadSurvivesStateTransfer(t *testing.T) {
	f := newGateFetcher()
	f.gate("u1")
	m := newTestManager(WithFetcher(f))
	b := &testBehavior{}

	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}

	// A second pass with the same reference moves the state onto a new
	// layer instance while the fetch is still in flight.
	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}
	l := m.Layers("a")[0]
	if !l.State().IsLoading(PropData) {
		t.Fatal("IsLoading = false, want true across the state transfer")
	}
	if got := m.Stats().AsyncStarted.Load(); got != 1 {
		t.Fatalf("AsyncStarted = %d, want 1 (unchanged reference)", got)
	}

	f.release("u1")
	waitFor(t, func() bool { return m.Stats().AsyncCompleted.Load() == 1 }, "load completion")
	if got := l.Data(); got != "data:u1" {
		t.Errorf("Data() = %v, want data:u1 delivered to the matched layer", got)
	}
}

func TestInlineDataSupersedesInFlightLoad(t *testing.T) {
	f := newGateFetcher()
	f.gate("u1")
	m := newTestManager(WithFetcher(f))
	b := &testBehavior{}

	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}

	// Inline data arrives while the fetch for u1 is still in flight.
	inline := []any{1.0, 2.0, 3.0}
	if err := m.SetLayers(New(b, Props{"id": "a", "data": inline})); err != nil {
		t.Fatal(err)
	}
	l := m.Layers("a")[0]
	if got, ok := l.Data().([]any); !ok || len(got) != 3 {
		t.Fatalf("Data() = %v, want the inline slice", l.Data())
	}

	// The late completion is stale and must not displace the inline value.
	f.release("u1")
	waitFor(t, func() bool { return m.Stats().AsyncSuperseded.Load() == 1 }, "stale load discard")
	if got, ok := l.Data().([]any); !ok || len(got) != 3 {
		t.Errorf("Data() = %v after stale completion, want the inline slice", l.Data())
	}
	if got := m.Stats().AsyncCompleted.Load(); got != 0 {
		t.Errorf("AsyncCompleted = %d, want 0 (stale load must not count)", got)
	}
}

func TestAsyncFailureIsSilent(t *testing.T) {
	f := newGateFetcher()
	f.errs["bad"] = errors.New("404")
	logs := captureLogs(t)
	m := newTestManager(WithFetcher(f))

	if err := m.SetLayers(New(&testBehavior{}, Props{"id": "a", "data": "bad"})); err != nil {
		t.Fatalf("SetLayers must not surface load errors, got %v", err)
	}
	waitFor(t, func() bool { return m.Stats().AsyncFailed.Load() == 1 }, "load failure")

	l := m.Layers("a")[0]
	if got, ok := l.Data().([]any); !ok || len(got) != 0 {
		t.Errorf("Data() = %v, want EmptyData after a failed load", l.Data())
	}
	if flags := l.ChangeFlags(); flags.DataChanged() {
		t.Errorf("flags = %s; a failed load must not raise dataChanged", flags.String())
	}
	if !strings.Contains(logs.String(), "async load failed") {
		t.Error("expected a warning for the failed load")
	}
}

func TestAsyncUnchangedReferenceDoesNotReload(t *testing.T) {
	f := newGateFetcher()
	m := newTestManager(WithFetcher(f))
	b := &testBehavior{}

	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1"})); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return m.Stats().AsyncCompleted.Load() == 1 }, "first load")

	// Resubmitting the same reference must not refetch.
	if err := m.SetLayers(New(b, Props{"id": "a", "data": "u1", "extra": 1})); err != nil {
		t.Fatal(err)
	}
	if got := m.Stats().AsyncStarted.Load(); got != 1 {
		t.Errorf("AsyncStarted = %d, want 1 (unchanged reference)", got)
	}
}
