package surface

import (
	"fmt"
	"strings"
)

// OpKind names one mutation-interface operation in a recorded trace.
type OpKind string

const (
	OpCreateElement   OpKind = "create_element"
	OpSetAttribute    OpKind = "set_attribute"
	OpRemoveAttribute OpKind = "remove_attribute"
	OpInsertChild     OpKind = "insert_child"
	OpMoveChild       OpKind = "move_child"
	OpRemoveChild     OpKind = "remove_child"
	OpCreateText      OpKind = "create_text"
	OpSetText         OpKind = "set_text"
)

// Op is one recorded mutation. Handles are rendered as stable symbolic
// names (h1, h2, ...) in creation order so traces are deterministic.
type Op struct {
	Kind   OpKind
	Handle string
	Parent string
	Key    string
	Value  string
	Index  int
}

// String renders the op as one trace line.
func (o Op) String() string {
	switch o.Kind {
	case OpCreateElement:
		return fmt.Sprintf("create_element tag=%s -> %s", o.Value, o.Handle)
	case OpCreateText:
		return fmt.Sprintf("create_text %q -> %s", o.Value, o.Handle)
	case OpSetAttribute:
		return fmt.Sprintf("set_attribute %s %s=%q", o.Handle, o.Key, o.Value)
	case OpRemoveAttribute:
		return fmt.Sprintf("remove_attribute %s %s", o.Handle, o.Key)
	case OpInsertChild:
		return fmt.Sprintf("insert_child parent=%s child=%s index=%d", o.Parent, o.Handle, o.Index)
	case OpMoveChild:
		return fmt.Sprintf("move_child parent=%s child=%s index=%d", o.Parent, o.Handle, o.Index)
	case OpRemoveChild:
		return fmt.Sprintf("remove_child parent=%s child=%s", o.Parent, o.Handle)
	case OpSetText:
		return fmt.Sprintf("set_text %s %q", o.Handle, o.Value)
	default:
		return fmt.Sprintf("unknown op %q", string(o.Kind))
	}
}

// Recorder wraps a Surface and records every mutation as an Op. It is
// the test instrument behind the golden patch traces and the op-count
// properties (for example "zero move_child calls when relative key order
// is unchanged").
//
// Thread-safety: none; UI goroutine only, like the surface it wraps.
type Recorder struct {
	inner Surface
	ops   []Op
	names map[Handle]string
	next  int
}

// NewRecorder wraps inner. Known handles (such as the mount root) can be
// pre-named via Name before any ops are recorded.
func NewRecorder(inner Surface) *Recorder {
	return &Recorder{inner: inner, names: make(map[Handle]string)}
}

// Name assigns a symbolic name to a handle, typically "root".
func (r *Recorder) Name(h Handle, name string) {
	r.names[h] = name
}

// Ops returns the recorded trace.
func (r *Recorder) Ops() []Op { return r.ops }

// Reset discards the recorded trace but keeps handle names.
func (r *Recorder) Reset() { r.ops = nil }

// Count returns how many ops of the given kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Trace renders the recorded ops as newline-separated lines.
func (r *Recorder) Trace() string {
	lines := make([]string, len(r.ops))
	for i, op := range r.ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}

func (r *Recorder) name(h Handle) string {
	if n, ok := r.names[h]; ok {
		return n
	}
	r.next++
	n := fmt.Sprintf("h%d", r.next)
	r.names[h] = n
	return n
}

// CreateElement implements Surface.
func (r *Recorder) CreateElement(tag string) (Handle, error) {
	h, err := r.inner.CreateElement(tag)
	if err != nil {
		return nil, err
	}
	r.ops = append(r.ops, Op{Kind: OpCreateElement, Handle: r.name(h), Value: tag})
	return h, nil
}

// CreateText implements Surface.
func (r *Recorder) CreateText(value string) (Handle, error) {
	h, err := r.inner.CreateText(value)
	if err != nil {
		return nil, err
	}
	r.ops = append(r.ops, Op{Kind: OpCreateText, Handle: r.name(h), Value: value})
	return h, nil
}

// SetText implements Surface.
func (r *Recorder) SetText(h Handle, value string) error {
	if err := r.inner.SetText(h, value); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpSetText, Handle: r.name(h), Value: value})
	return nil
}

// SetAttribute implements Surface.
func (r *Recorder) SetAttribute(h Handle, key, value string) error {
	if err := r.inner.SetAttribute(h, key, value); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpSetAttribute, Handle: r.name(h), Key: key, Value: value})
	return nil
}

// RemoveAttribute implements Surface.
func (r *Recorder) RemoveAttribute(h Handle, key string) error {
	if err := r.inner.RemoveAttribute(h, key); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpRemoveAttribute, Handle: r.name(h), Key: key})
	return nil
}

// InsertChild implements Surface.
func (r *Recorder) InsertChild(parent, child Handle, index int) error {
	if err := r.inner.InsertChild(parent, child, index); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpInsertChild, Parent: r.name(parent), Handle: r.name(child), Index: index})
	return nil
}

// MoveChild implements Surface.
func (r *Recorder) MoveChild(parent, child Handle, index int) error {
	if err := r.inner.MoveChild(parent, child, index); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpMoveChild, Parent: r.name(parent), Handle: r.name(child), Index: index})
	return nil
}

// RemoveChild implements Surface.
func (r *Recorder) RemoveChild(parent, child Handle) error {
	if err := r.inner.RemoveChild(parent, child); err != nil {
		return err
	}
	r.ops = append(r.ops, Op{Kind: OpRemoveChild, Parent: r.name(parent), Handle: r.name(child)})
	return nil
}
