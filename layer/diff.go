package layer

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// diffProps computes the change flags between two resolved prop bags.
// It is pure: async deferral of the data flag is handled by the caller
// (Layer.diffProps), which knows whether a loader is configured.
func diffProps(newProps, oldProps Props) ChangeFlags {
	var flags ChangeFlags

	if reason := diffDataProp(newProps, oldProps); reason != "" {
		flags.Data = reason
	}
	if reason := diffShallowProps(newProps, oldProps); reason != "" {
		flags.Props = reason
	}
	flags.UpdateTriggers = diffUpdateTriggers(newProps.UpdateTriggers(), oldProps.UpdateTriggers())
	return flags
}

// diffDataProp compares the data prop. A caller-supplied comparator
// overrides default identity equality.
func diffDataProp(newProps, oldProps Props) string {
	newData, oldData := newProps.Data(), oldProps.Data()
	if cmp := newProps.DataComparator(); cmp != nil {
		if cmp(newData, oldData) {
			return ""
		}
		return "data comparator returned false"
	}
	if equalIdentity(newData, oldData) {
		return ""
	}
	return "data changed"
}

// diffShallowProps shallow-compares every prop except the specially
// handled keys. The first difference found names the reason.
func diffShallowProps(newProps, oldProps Props) string {
	for key, newVal := range newProps {
		if specialPropKey(key) {
			continue
		}
		oldVal, ok := oldProps[key]
		if !ok {
			return "props." + key + " added"
		}
		if !equalIdentity(newVal, oldVal) {
			return "props." + key + " changed"
		}
	}
	for key := range oldProps {
		if specialPropKey(key) {
			continue
		}
		if _, ok := newProps[key]; !ok {
			return "props." + key + " removed"
		}
	}
	return ""
}

// specialPropKey reports whether a key is excluded from the shallow
// prop comparison because it is diffed separately (data, triggers) or
// carries no render-relevant state (id, callbacks, comparator).
func specialPropKey(key string) bool {
	switch key {
	case PropID, PropData, PropDataComparator, PropUpdateTriggers, PropOnDataLoad:
		return true
	}
	return false
}

// diffUpdateTriggers compares trigger values by fingerprint and returns
// a map of changed trigger names to reasons, or nil if nothing changed.
// A trigger present on only one side counts as changed.
func diffUpdateTriggers(newTriggers, oldTriggers map[string]any) map[string]string {
	if len(newTriggers) == 0 && len(oldTriggers) == 0 {
		return nil
	}
	var changed map[string]string
	record := func(name, reason string) {
		if changed == nil {
			changed = make(map[string]string)
		}
		changed[name] = reason
	}
	for name, newVal := range newTriggers {
		oldVal, ok := oldTriggers[name]
		if !ok {
			record(name, "trigger added")
			continue
		}
		if triggerFingerprint(newVal) != triggerFingerprint(oldVal) {
			record(name, "trigger value changed")
		}
	}
	for name := range oldTriggers {
		if _, ok := newTriggers[name]; !ok {
			record(name, "trigger removed")
		}
	}
	return changed
}

// triggerFingerprint hashes a trigger value's canonical representation.
// Trigger values are expected to be small plain values (numbers,
// strings, short structs); hashing lets the flags record stay compact
// while still detecting deep changes.
func triggerFingerprint(v any) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%#v", v))
}

// equalIdentity implements the default prop equality: comparable values
// compare with ==; slices, maps and funcs compare by reference
// identity; everything else falls back to deep equality. Two non-nil
// funcs of the same type are treated as equal, mirroring the original
// system where callbacks do not participate in change detection.
func equalIdentity(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice, reflect.Map:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() == vb.IsNil()
		}
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	case reflect.Func:
		return true
	case reflect.Pointer, reflect.Chan:
		return va.UnsafePointer() == vb.UnsafePointer()
	}
	if va.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
