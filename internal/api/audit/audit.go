// Package audit records who changed what. A Change holds sparse before and
// after maps of only the watched fields that differ, and a Recorder
// persists it together with the request that caused it.
package audit

import (
	"maps"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Object is anything that can be audited.
type Object interface {
	AuditObjectID() string
	AuditObjectType() string
	AuditValues() map[string]any
}

// Snapshot is the state of an Object at the time Take was called. Later
// mutations of the object do not affect it.
type Snapshot struct {
	ObjectID   string
	ObjectType string
	Values     map[string]any
}

// Take snapshots o. Call it before mutating o; once o has been saved the
// snapshot is the only record of the previous values.
func Take(o Object) Snapshot {
	return Snapshot{
		ObjectID:   o.AuditObjectID(),
		ObjectType: o.AuditObjectType(),
		Values:     maps.Clone(o.AuditValues()),
	}
}

// Change is a sparse diff.
type Change struct {
	Before map[string]any
	After  map[string]any
}

// Empty reports whether no watched field changed.
func (c Change) Empty() bool {
	return len(c.Before) == 0 && len(c.After) == 0
}

var equateEmpty = cmpopts.EquateEmpty()

// Diff compares a snapshot with the current state of after. Only the
// watched fields are considered, or every field when none are given.
func Diff(before Snapshot, after Object, fields ...string) Change {
	afterValues := after.AuditValues()
	if len(fields) == 0 {
		fields = allFields(before.Values, afterValues)
	}

	c := Change{Before: map[string]any{}, After: map[string]any{}}
	for _, f := range fields {
		b, a := before.Values[f], afterValues[f]
		if cmp.Equal(b, a, equateEmpty) {
			continue
		}
		c.Before[f] = b
		c.After[f] = a
	}
	return c
}

// Created is the change of an object that did not exist before.
func Created(o Object, fields ...string) Change {
	return Change{After: pick(o.AuditValues(), fields)}
}

// Deleted is the change of an object that no longer exists.
func Deleted(o Object, fields ...string) Change {
	return Change{Before: pick(o.AuditValues(), fields)}
}

func pick(values map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return maps.Clone(values)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := values[f]; ok {
			out[f] = v
		}
	}
	return out
}

func allFields(a, b map[string]any) []string {
	keys := slices.Collect(maps.Keys(a))
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
