package harness

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/loomui/loom/internal/vnode"
)

// Scenario is one declarative reconciliation run: a named sequence of
// trees plus optional assertions over the resulting trace.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Steps       []NodeSpec  `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions,omitempty"`
}

// NodeSpec describes one tree node in scenario YAML. Exactly one of
// the variant fields (empty, text, tag, list) must be set; attrs and
// children are only valid together with tag.
type NodeSpec struct {
	Empty    bool              `yaml:"empty,omitempty"`
	Text     *string           `yaml:"text,omitempty"`
	Tag      string            `yaml:"tag,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []NodeSpec        `yaml:"children,omitempty"`
	List     []ItemSpec        `yaml:"list,omitempty"`
}

// ItemSpec is one keyed entry of a list node. An empty or duplicate
// key is allowed so scenarios can exercise the positional fallback.
type ItemSpec struct {
	Key  string   `yaml:"key,omitempty"`
	Node NodeSpec `yaml:"node"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. Unknown fields
// are rejected so typos fail loudly instead of silently dropping a
// step or assertion.
func ParseScenario(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s: at least one step is required", s.Name)
	}
	for i := range s.Steps {
		if err := validateNode(&s.Steps[i]); err != nil {
			return fmt.Errorf("scenario %s: step %d: %w", s.Name, i, err)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(&s.Assertions[i], len(s.Steps)); err != nil {
			return fmt.Errorf("scenario %s: assertion %d: %w", s.Name, i, err)
		}
	}
	return nil
}

func validateNode(n *NodeSpec) error {
	variants := 0
	if n.Empty {
		variants++
	}
	if n.Text != nil {
		variants++
	}
	if n.Tag != "" {
		variants++
	}
	if n.List != nil {
		variants++
	}
	if variants != 1 {
		return fmt.Errorf("node must set exactly one of empty, text, tag, list (got %d)", variants)
	}
	if n.Tag == "" && (len(n.Attrs) > 0 || len(n.Children) > 0) {
		return fmt.Errorf("attrs and children require tag")
	}
	for i := range n.Children {
		if err := validateNode(&n.Children[i]); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	for i := range n.List {
		if err := validateNode(&n.List[i].Node); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// build converts the described node into a vnode tree. Attributes apply in
// sorted key order so traces stay byte-stable across runs.
func (n *NodeSpec) build() (vnode.Node, error) {
	switch {
	case n.Empty:
		return vnode.Empty{}, nil

	case n.Text != nil:
		return vnode.NewText(*n.Text), nil

	case n.Tag != "":
		el := vnode.NewElement(n.Tag)
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			el.WithAttr(k, n.Attrs[k])
		}
		for i := range n.Children {
			child, err := n.Children[i].build()
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		}
		return el, nil

	case n.List != nil:
		items := make([]vnode.Keyed, len(n.List))
		for i := range n.List {
			node, err := n.List[i].Node.build()
			if err != nil {
				return nil, err
			}
			items[i] = vnode.Keyed{Key: n.List[i].Key, Node: node}
		}
		return vnode.NewList(items...), nil

	default:
		return nil, fmt.Errorf("node spec sets no variant")
	}
}
