package content

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

// ErrCloneFailed wraps every failure to duplicate a snapshot.
var ErrCloneFailed = errors.New("content: clone failed")

// Snapshot is the full set of content items at one point in time.
type Snapshot struct {
	Scripts  *Group
	Styles   *Group
	Passages *Group
}

// NewSnapshot returns a snapshot with three empty groups.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Scripts:  NewGroup(),
		Styles:   NewGroup(),
		Passages: NewGroup(),
	}
}

// Group returns the group holding items of the given kind.
func (s *Snapshot) Group(kind Kind) *Group {
	if s == nil {
		return nil
	}
	switch kind {
	case KindScript:
		return s.Scripts
	case KindStyle:
		return s.Styles
	case KindPassage:
		return s.Passages
	}
	return nil
}

// Clone returns a fully independent deep copy. The receiver is never modified.
func (s *Snapshot) Clone() (*Snapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: snapshot is nil", ErrCloneFailed)
	}
	out := &Snapshot{}
	for _, kind := range Kinds {
		group, err := s.Group(kind).clone()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCloneFailed, kind, err)
		}
		switch kind {
		case KindScript:
			out.Scripts = group
		case KindStyle:
			out.Styles = group
		case KindPassage:
			out.Passages = group
		}
	}
	return out, nil
}

// Fingerprint hashes every item name and content with BLAKE3. Two snapshots
// with the same items in the same order share a fingerprint.
func (s *Snapshot) Fingerprint() string {
	h := blake3.New()
	var lenBuf [8]byte
	write := func(value string) {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(value)))
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write([]byte(value))
	}
	for _, kind := range Kinds {
		write(string(kind))
		for _, item := range s.Group(kind).Items() {
			write(item.Name)
			write(item.Content)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Change identifies an item whose content differs between two snapshots.
type Change struct {
	Kind   Kind
	Name   string
	Before string
	After  string
}

// Changes lists items of next whose content differs from prev. Items missing
// from prev are reported with an empty Before.
func Changes(prev, next *Snapshot) []Change {
	var out []Change
	for _, kind := range Kinds {
		before := prev.Group(kind)
		for _, item := range next.Group(kind).Items() {
			old, ok := before.Get(item.Name)
			if ok && old.Content == item.Content {
				continue
			}
			change := Change{Kind: kind, Name: item.Name, After: item.Content}
			if ok {
				change.Before = old.Content
			}
			out = append(out, change)
		}
	}
	return out
}
