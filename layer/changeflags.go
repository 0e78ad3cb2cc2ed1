package layer

import "strings"

// ChangeFlags records what kind of input changed on a layer since the
// flags were last cleared. A flag is set when its reason string is
// non-empty; the first reason recorded for a flag is kept.
//
// Flags only accumulate (sticky OR) within a reconciliation cycle and
// are cleared exactly once, after the layer's update pass runs.
type ChangeFlags struct {
	// Data is set when the data prop changed (or an async load for it
	// resolved).
	Data string

	// Props is set when any other prop changed.
	Props string

	// Viewport is set when the active viewport changed.
	Viewport string

	// UpdateTriggers maps each changed trigger name to the reason it
	// is considered changed.
	UpdateTriggers map[string]string
}

// DataChanged reports whether the data flag is set.
func (f *ChangeFlags) DataChanged() bool { return f.Data != "" }

// PropsChanged reports whether the props flag is set.
func (f *ChangeFlags) PropsChanged() bool { return f.Props != "" }

// ViewportChanged reports whether the viewport flag is set.
func (f *ChangeFlags) ViewportChanged() bool { return f.Viewport != "" }

// UpdateTriggersChanged reports whether any update trigger changed.
func (f *ChangeFlags) UpdateTriggersChanged() bool { return len(f.UpdateTriggers) > 0 }

// PropsOrDataChanged is the derived composite of data, trigger and prop
// changes.
func (f *ChangeFlags) PropsOrDataChanged() bool {
	return f.DataChanged() || f.UpdateTriggersChanged() || f.PropsChanged()
}

// SomethingChanged reports whether any flag at all is set.
func (f *ChangeFlags) SomethingChanged() bool {
	return f.PropsOrDataChanged() || f.ViewportChanged()
}

// Merge folds delta into f with sticky-OR semantics: a flag that is
// already set keeps its original reason; trigger entries are unioned.
func (f *ChangeFlags) Merge(delta ChangeFlags) {
	if f.Data == "" {
		f.Data = delta.Data
	}
	if f.Props == "" {
		f.Props = delta.Props
	}
	if f.Viewport == "" {
		f.Viewport = delta.Viewport
	}
	if len(delta.UpdateTriggers) > 0 {
		if f.UpdateTriggers == nil {
			f.UpdateTriggers = make(map[string]string, len(delta.UpdateTriggers))
		}
		for name, reason := range delta.UpdateTriggers {
			if _, ok := f.UpdateTriggers[name]; !ok {
				f.UpdateTriggers[name] = reason
			}
		}
	}
}

// Clear resets all flags. Callers must not clear between a diff and the
// update pass that consumes it.
func (f *ChangeFlags) Clear() {
	f.Data = ""
	f.Props = ""
	f.Viewport = ""
	f.UpdateTriggers = nil
}

// clone returns an independent copy, so update hooks can hold the flags
// after the layer clears its own record.
func (f *ChangeFlags) clone() ChangeFlags {
	out := *f
	if f.UpdateTriggers != nil {
		out.UpdateTriggers = make(map[string]string, len(f.UpdateTriggers))
		for k, v := range f.UpdateTriggers {
			out.UpdateTriggers[k] = v
		}
	}
	return out
}

// String summarizes the set flags for logging.
func (f *ChangeFlags) String() string {
	if !f.SomethingChanged() {
		return "unchanged"
	}
	var parts []string
	if f.DataChanged() {
		parts = append(parts, "data: "+f.Data)
	}
	if f.PropsChanged() {
		parts = append(parts, "props: "+f.Props)
	}
	if f.ViewportChanged() {
		parts = append(parts, "viewport: "+f.Viewport)
	}
	for name, reason := range f.UpdateTriggers {
		parts = append(parts, "trigger "+name+": "+reason)
	}
	return strings.Join(parts, "; ")
}
