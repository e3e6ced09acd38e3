package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap := NewSnapshot()
	mustAdd(t, snap.Scripts, Item{Name: "main.js", Content: "let x = 1;"})
	mustAdd(t, snap.Styles, Item{Name: "style.css", Content: "body { color: red; }"})
	mustAdd(t, snap.Passages, Item{Name: "Start", Content: "Hello", Source: "story.twee"})
	return snap
}

func mustAdd(t *testing.T, g *Group, item Item) {
	t.Helper()
	if err := g.Add(item); err != nil {
		t.Fatalf("add %s: %v", item.Name, err)
	}
}

func TestGroupAddRejectsDuplicates(t *testing.T) {
	g := NewGroup()
	mustAdd(t, g, Item{Name: "a.js"})
	err := g.Add(Item{Name: "a.js"})
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("err = %v, want ErrDuplicateItem", err)
	}
	if err := g.Add(Item{Name: "  "}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
}

func TestGroupGetIsExact(t *testing.T) {
	g := NewGroup()
	mustAdd(t, g, Item{Name: "Main.js", Content: "x"})
	if _, ok := g.Get("main.js"); ok {
		t.Fatalf("lookup must be case sensitive")
	}
	if _, ok := g.Get("Main.js "); ok {
		t.Fatalf("lookup must not trim")
	}
	item, ok := g.Get("Main.js")
	if !ok || item.Content != "x" {
		t.Fatalf("Get(Main.js) = %+v, %v", item, ok)
	}
	var nilGroup *Group
	if _, ok := nilGroup.Get("Main.js"); ok {
		t.Fatalf("nil group must report missing")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := sampleSnapshot(t)
	before := orig.Fingerprint()
	clone, err := orig.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	item, _ := clone.Scripts.Get("main.js")
	item.Content = "changed"
	mustAdd(t, clone.Passages, Item{Name: "Extra"})

	origItem, _ := orig.Scripts.Get("main.js")
	if origItem.Content != "let x = 1;" {
		t.Fatalf("original mutated: %q", origItem.Content)
	}
	if orig.Passages.Len() != 1 {
		t.Fatalf("original passages = %d, want 1", orig.Passages.Len())
	}
	if got := orig.Fingerprint(); got != before {
		t.Fatalf("fingerprint changed: %s != %s", got, before)
	}
	if clone.Fingerprint() == before {
		t.Fatalf("clone fingerprint should differ after mutation")
	}
}

func TestCloneFailures(t *testing.T) {
	var nilSnap *Snapshot
	if _, err := nilSnap.Clone(); !errors.Is(err, ErrCloneFailed) {
		t.Fatalf("nil clone err = %v, want ErrCloneFailed", err)
	}
	broken := sampleSnapshot(t)
	broken.Scripts.items = append(broken.Scripts.items, nil)
	if _, err := broken.Clone(); !errors.Is(err, ErrCloneFailed) {
		t.Fatalf("broken clone err = %v, want ErrCloneFailed", err)
	}
}

func TestCloneFillsMissingGroups(t *testing.T) {
	partial := &Snapshot{Scripts: NewGroup()}
	clone, err := partial.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if clone.Styles == nil || clone.Passages == nil {
		t.Fatalf("clone should allocate every group: %+v", clone)
	}
}

func TestChanges(t *testing.T) {
	prev := sampleSnapshot(t)
	next, err := prev.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	item, _ := next.Passages.Get("Start")
	item.Content = "Hi"
	got := Changes(prev, next)
	want := []Change{{Kind: KindPassage, Name: "Start", Before: "Hello", After: "Hi"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStorePublish(t *testing.T) {
	store := NewMemoryStore(nil)
	if _, err := store.Current(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("err = %v, want ErrNoSnapshot", err)
	}
	first := sampleSnapshot(t)
	if err := store.Publish(first, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	second, _ := first.Clone()
	if err := store.Publish(second, NewSnapshot()); !errors.Is(err, ErrStalePublish) {
		t.Fatalf("err = %v, want ErrStalePublish", err)
	}
	if err := store.Publish(second, first); err != nil {
		t.Fatalf("publish: %v", err)
	}
	current, _ := store.Current()
	if current != second {
		t.Fatalf("current snapshot not swapped")
	}
}

func TestParseTwee(t *testing.T) {
	doc := "\n:: StoryTitle\nDemo\n\n:: Start [intro tag] {\"position\":\"100,100\"}\nHello\n[[Next]]\n\n\n:: Odd \\[name\\]\nbody\n"
	items, err := ParseTwee("story.twee", []byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Item{
		{Name: "StoryTitle", Content: "Demo", Source: "story.twee"},
		{Name: "Start", Content: "Hello\n[[Next]]", Source: "story.twee", Meta: "[intro tag] {\"position\":\"100,100\"}"},
		{Name: "Odd [name]", Content: "body", Source: "story.twee"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("passages mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTweeErrors(t *testing.T) {
	if _, err := ParseTwee("x.twee", []byte("stray\n:: A\nbody")); err == nil {
		t.Fatalf("expected text before header to fail")
	}
	if _, err := ParseTwee("x.twee", []byte(":: [tag]\nbody")); err == nil {
		t.Fatalf("expected nameless header to fail")
	}
}

func TestFormatTweeRoundTrip(t *testing.T) {
	items := []*Item{
		{Name: "Start", Content: "Hello", Meta: "[a]"},
		{Name: "Odd [name]", Content: "line1\nline2"},
	}
	parsed, err := ParseTwee("", FormatTwee(items))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("len = %d, want 2", len(parsed))
	}
	for i, item := range parsed {
		if item.Name != items[i].Name || item.Content != items[i].Content || item.Meta != items[i].Meta {
			t.Fatalf("passage %d = %+v, want %+v", i, item, *items[i])
		}
	}
}

func TestLoadAndWriteDir(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"js/main.js":        "let x = 1;",
		"css/site.css":      "body {}",
		"story/story.twee":  ":: Start\nHello\n\n:: End\nBye\n",
		"notes.txt":         "ignored",
		".git/skip/skip.js": "ignored",
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	snap, err := LoadDir(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"js/main.js"}, snap.Scripts.Names()); diff != "" {
		t.Fatalf("scripts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"css/site.css"}, snap.Styles.Names()); diff != "" {
		t.Fatalf("styles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Start", "End"}, snap.Passages.Names()); diff != "" {
		t.Fatalf("passages (-want +got):\n%s", diff)
	}

	out := t.TempDir()
	if err := WriteDir(snap, out); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloaded, err := LoadDir(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Fingerprint() != snap.Fingerprint() {
		t.Fatalf("round trip changed content")
	}
}

func TestLoadDirRejectsDuplicatePassages(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.twee", "b.twee"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(":: Start\nx\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := LoadDir(root); !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("err = %v, want ErrDuplicateItem", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "published.msgpack")
	if _, err := LoadState(path); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("err = %v, want ErrNoSnapshot", err)
	}
	snap := sampleSnapshot(t)
	if err := SaveState(path, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Fingerprint() != snap.Fingerprint() {
		t.Fatalf("state round trip changed content")
	}
	start, _ := loaded.Passages.Get("Start")
	if start.Source != "story.twee" {
		t.Fatalf("source = %q, want story.twee", start.Source)
	}
}
