package surface

import (
	"fmt"
	"sort"
	"strings"
)

// MemoryNode is one node in the in-memory surface tree.
type MemoryNode struct {
	// Tag is the element tag; empty for text nodes.
	Tag string
	// Text is the text content; meaningful only when Tag is empty.
	Text string
	// Attrs holds element attributes.
	Attrs map[string]string
	// Children are the attached child nodes in order.
	Children []*MemoryNode

	parent *MemoryNode
}

// IsText reports whether the node is a text node.
func (n *MemoryNode) IsText() bool { return n.Tag == "" }

// Memory is an in-memory Surface implementation with DOM-like child
// semantics. It exists so tests can assert on the structural outcome of
// a patch sequence rather than on the sequence itself.
//
// Thread-safety: none. Memory is driven from the UI goroutine only,
// matching the reconciler's single-writer discipline.
type Memory struct {
	root *MemoryNode
}

// NewMemory creates an empty surface with a root container.
func NewMemory() *Memory {
	return &Memory{root: &MemoryNode{Tag: "#root", Attrs: map[string]string{}}}
}

// Root returns the root container handle.
func (m *Memory) Root() Handle { return m.root }

// CreateElement implements Surface.
func (m *Memory) CreateElement(tag string) (Handle, error) {
	if tag == "" {
		return nil, fmt.Errorf("create element: empty tag")
	}
	return &MemoryNode{Tag: tag, Attrs: map[string]string{}}, nil
}

// CreateText implements Surface.
func (m *Memory) CreateText(value string) (Handle, error) {
	return &MemoryNode{Text: value}, nil
}

// SetText implements Surface.
func (m *Memory) SetText(h Handle, value string) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	if !n.IsText() {
		return fmt.Errorf("set text: handle is an element <%s>", n.Tag)
	}
	n.Text = value
	return nil
}

// SetAttribute implements Surface.
func (m *Memory) SetAttribute(h Handle, key, value string) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	if n.IsText() {
		return fmt.Errorf("set attribute %q: handle is a text node", key)
	}
	n.Attrs[key] = value
	return nil
}

// RemoveAttribute implements Surface.
func (m *Memory) RemoveAttribute(h Handle, key string) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	if n.IsText() {
		return fmt.Errorf("remove attribute %q: handle is a text node", key)
	}
	delete(n.Attrs, key)
	return nil
}

// InsertChild implements Surface.
func (m *Memory) InsertChild(parent, child Handle, index int) error {
	p, err := m.node(parent)
	if err != nil {
		return err
	}
	c, err := m.node(child)
	if err != nil {
		return err
	}
	if c.parent != nil {
		return fmt.Errorf("insert child: node already attached")
	}
	if index < 0 || index > len(p.Children) {
		return fmt.Errorf("insert child: index %d out of range [0,%d]", index, len(p.Children))
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[index+1:], p.Children[index:])
	p.Children[index] = c
	c.parent = p
	return nil
}

// MoveChild implements Surface.
func (m *Memory) MoveChild(parent, child Handle, index int) error {
	p, err := m.node(parent)
	if err != nil {
		return err
	}
	c, err := m.node(child)
	if err != nil {
		return err
	}
	if c.parent != p {
		return fmt.Errorf("move child: node is not a child of parent")
	}
	// The index is interpreted after the child detaches; validating it
	// up front keeps the child attached when the move fails.
	if index < 0 || index > len(p.Children)-1 {
		return fmt.Errorf("move child: index %d out of range [0,%d]", index, len(p.Children)-1)
	}
	if err := m.detach(p, c); err != nil {
		return err
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[index+1:], p.Children[index:])
	p.Children[index] = c
	c.parent = p
	return nil
}

// RemoveChild implements Surface.
func (m *Memory) RemoveChild(parent, child Handle) error {
	p, err := m.node(parent)
	if err != nil {
		return err
	}
	c, err := m.node(child)
	if err != nil {
		return err
	}
	if c.parent != p {
		return fmt.Errorf("remove child: node is not a child of parent")
	}
	return m.detach(p, c)
}

func (m *Memory) detach(p, c *MemoryNode) error {
	for i, ch := range p.Children {
		if ch == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			c.parent = nil
			return nil
		}
	}
	return fmt.Errorf("detach: child not found under parent")
}

func (m *Memory) node(h Handle) (*MemoryNode, error) {
	n, ok := h.(*MemoryNode)
	if !ok || n == nil {
		return nil, fmt.Errorf("invalid handle %T", h)
	}
	return n, nil
}

// Render returns a canonical single-line rendition of the mounted tree,
// used for structural equality assertions. Attributes print in sorted
// key order so the rendition is deterministic.
func (m *Memory) Render() string {
	var b strings.Builder
	renderMemory(&b, m.root)
	return b.String()
}

func renderMemory(b *strings.Builder, n *MemoryNode) {
	if n.IsText() {
		fmt.Fprintf(b, "%q", n.Text)
		return
	}
	b.WriteString("<")
	b.WriteString(n.Tag)
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%q", k, n.Attrs[k])
	}
	b.WriteString(">")
	for i, c := range n.Children {
		if i > 0 {
			b.WriteString(" ")
		}
		renderMemory(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteString(">")
}
