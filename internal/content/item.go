package content

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names one of the three item groups held by a snapshot.
type Kind string

const (
	KindScript  Kind = "script"
	KindStyle   Kind = "style"
	KindPassage Kind = "passage"
)

// Kinds lists the groups in the order the engine walks them.
var Kinds = []Kind{KindScript, KindStyle, KindPassage}

var (
	// ErrDuplicateItem is returned when a group already holds an item with the same name.
	ErrDuplicateItem = errors.New("content: duplicate item")
	// ErrEmptyName is returned when an item has no name.
	ErrEmptyName = errors.New("content: item name is required")
)

// Item is a single named unit of text. Content is mutated in place by the
// patch engine, but only on items that belong to a cloned snapshot.
type Item struct {
	Name    string `msgpack:"name"`
	Content string `msgpack:"content"`
	// Source is the file the item was read from, relative to the content root.
	Source string `msgpack:"source,omitempty"`
	// Meta holds the passage header tail (tags and metadata block), verbatim.
	Meta string `msgpack:"meta,omitempty"`
}

// Group is an insertion-ordered collection of items keyed by exact name.
type Group struct {
	items []*Item
	index map[string]int
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{index: map[string]int{}}
}

// Add appends an item. Names must be unique within the group.
func (g *Group) Add(item Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrEmptyName
	}
	if g.index == nil {
		g.index = map[string]int{}
	}
	if _, exists := g.index[item.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.Name)
	}
	copied := item
	g.index[item.Name] = len(g.items)
	g.items = append(g.items, &copied)
	return nil
}

// Get returns the item registered under name. The lookup is exact: no
// trimming or case folding.
func (g *Group) Get(name string) (*Item, bool) {
	if g == nil {
		return nil, false
	}
	idx, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.items[idx], true
}

// Len reports how many items the group holds.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.items)
}

// Items returns the group's items in insertion order.
func (g *Group) Items() []*Item {
	if g == nil {
		return nil
	}
	out := make([]*Item, len(g.items))
	copy(out, g.items)
	return out
}

// Names returns item names in insertion order.
func (g *Group) Names() []string {
	if g == nil {
		return nil
	}
	names := make([]string, len(g.items))
	for i, item := range g.items {
		names[i] = item.Name
	}
	return names
}

func (g *Group) clone() (*Group, error) {
	out := NewGroup()
	if g == nil {
		return out, nil
	}
	if len(g.index) != len(g.items) {
		return nil, fmt.Errorf("index holds %d names for %d items", len(g.index), len(g.items))
	}
	for i, item := range g.items {
		if item == nil {
			return nil, fmt.Errorf("item %d is nil", i)
		}
		if idx, ok := g.index[item.Name]; !ok || idx != i {
			return nil, fmt.Errorf("index out of sync for %s", item.Name)
		}
		if err := out.Add(*item); err != nil {
			return nil, err
		}
	}
	return out, nil
}
