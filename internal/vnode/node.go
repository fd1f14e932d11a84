package vnode

import (
	"golang.org/x/text/unicode/norm"
)

// Kind identifies a node variant.
type Kind int

const (
	// KindEmpty is a placeholder node that renders nothing.
	KindEmpty Kind = iota + 1
	// KindText is a text node.
	KindText
	// KindElement is a tagged element with attributes and children.
	KindElement
	// KindList is an ordered sequence of keyed children.
	KindList
	// KindComponent is a component placeholder owning one scope.
	KindComponent
	// KindSuspense is a boundary with a primary and a fallback subtree.
	KindSuspense
)

// String returns the variant name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindElement:
		return "element"
	case KindList:
		return "list"
	case KindComponent:
		return "component"
	case KindSuspense:
		return "suspense"
	default:
		return "unknown"
	}
}

// Node is the sealed interface over the closed variant set.
// Only Empty, *Text, *Element, *List, *Component, and *Suspense implement it.
type Node interface {
	Kind() Kind
	node() // Sealed - only these types implement it
}

// Empty renders nothing. It still occupies one child slot on the surface
// (an empty text anchor) so sibling indices stay stable.
type Empty struct{}

func (Empty) Kind() Kind { return KindEmpty }
func (Empty) node()      {}

// Text is a text node. Construct with NewText to guarantee NFC form.
type Text struct {
	Value string
}

// NewText creates a text node with NFC-normalized content.
func NewText(value string) *Text {
	return &Text{Value: norm.NFC.String(value)}
}

func (*Text) Kind() Kind { return KindText }
func (*Text) node()      {}

// Attr is one attribute entry. Attribute order on an Element is
// significant for patch determinism; keys must be unique per element.
type Attr struct {
	Key   string
	Value string
}

// Element is a tagged element with ordered attributes and children.
type Element struct {
	Tag      string
	Attrs    []Attr
	Ref      *Ref
	Children []Node
}

// NewElement creates an element node.
func NewElement(tag string, children ...Node) *Element {
	return &Element{Tag: tag, Children: children}
}

// WithAttr appends an attribute and returns the element for chaining.
// Appending a duplicate key is a caller error surfaced by the differ.
func (e *Element) WithAttr(key, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
	return e
}

// WithRef attaches a surface handle reference to the element.
func (e *Element) WithRef(r *Ref) *Element {
	e.Ref = r
	return e
}

// Attr returns the value for key and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func (*Element) Kind() Kind { return KindElement }
func (*Element) node()      {}

// Keyed pairs a sibling key with a node. Keys are unique within one list
// and carry whatever ordering semantics the caller assigns; they are not
// global identities and need not be stable across unrelated lists.
type Keyed struct {
	Key  string
	Node Node
}

// List is an ordered sequence of keyed children. A list splats into its
// parent: it occupies one surface slot per item, not a wrapper element.
type List struct {
	Items []Keyed
}

// NewList creates a list node.
func NewList(items ...Keyed) *List {
	return &List{Items: items}
}

func (*List) Kind() Kind { return KindList }
func (*List) node()      {}

// Component is a component placeholder: a blueprint (type identity plus
// instance factory) and an immutable props snapshot. Mounting it creates
// one component scope owned by the mount record.
type Component struct {
	Blueprint Blueprint
	Props     Props
}

func (*Component) Kind() Kind { return KindComponent }
func (*Component) node()      {}

// Suspense is a boundary holding a primary subtree and a fallback
// subtree. Which of the two is mounted is runtime state owned by the
// mount record, not by this value.
type Suspense struct {
	Primary  Node
	Fallback Node
}

// NewSuspense creates a suspense boundary node.
func NewSuspense(primary, fallback Node) *Suspense {
	return &Suspense{Primary: primary, Fallback: fallback}
}

func (*Suspense) Kind() Kind { return KindSuspense }
func (*Suspense) node()      {}

// BoundaryMode reports which subtree of a suspense boundary is mounted.
type BoundaryMode int

const (
	// ModePrimary means the primary subtree is mounted.
	ModePrimary BoundaryMode = iota + 1
	// ModeFallback means the fallback subtree is mounted.
	ModeFallback
)

// String returns the mode name for diagnostics.
func (m BoundaryMode) String() string {
	switch m {
	case ModePrimary:
		return "primary"
	case ModeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}
