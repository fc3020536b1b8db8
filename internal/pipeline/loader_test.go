package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/subtrackr/internal/model"
)

const streamingJSON = `{"subscriptions": [
  {"id": "n1", "name": "Netflix", "amount": 15.99, "category": "Streaming", "next_billing": "2024-12-15"},
  {"id": "bad", "name": "Broken", "amount": "-4.00", "category": "Misc", "next_billing": "2024-12-20"}
]}`

const musicYAML = `subscriptions:
  - id: s1
    name: Spotify
    amount: "9.99"
    category: Music
    next_billing: "2024-12-18"
  - name: Typo
    amount: 3
    category: Misc
    next_billing: 12/20/2024
`

const softwareTOML = `[[subscriptions]]
id = "a1"
name = "Adobe"
amount = 52.99
category = "Software"
next_billing = "2024-12-25"
status = "paused"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeTracker struct {
	files map[string]model.TrackedFile
	err   error
}

func (f fakeTracker) TrackedFiles(context.Context) (map[string]model.TrackedFile, error) {
	return f.files, f.err
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "streaming.json", streamingJSON)
	writeFile(t, dir, "music.yaml", musicYAML)
	writeFile(t, dir, "software.toml", softwareTOML)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "broken.json", "{not json")

	var calls atomic.Int32
	res, err := Import(context.Background(), dir, nil, testNow, func(_, total int) {
		calls.Add(1)
		if total != 4 {
			t.Errorf("progress total = %d, want 4", total)
		}
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if res.TotalFiles != 4 || res.ParsedFiles != 3 || res.FileErrors != 1 {
		t.Errorf("files total/parsed/errors = %d/%d/%d, want 4/3/1", res.TotalFiles, res.ParsedFiles, res.FileErrors)
	}
	if int(calls.Load()) != 4 {
		t.Errorf("progress called %d times, want 4", calls.Load())
	}

	got := map[string]model.Subscription{}
	for _, s := range res.Subscriptions {
		got[s.ID] = s
	}
	for _, id := range []string{"n1", "s1", "a1"} {
		if _, ok := got[id]; !ok {
			t.Errorf("missing imported subscription %s", id)
		}
	}
	if got["a1"].Status != model.StatusPaused {
		t.Errorf("a1 status = %s, want paused", got["a1"].Status)
	}
	if !got["n1"].Amount.Equal(money(t, "15.99")) {
		t.Errorf("n1 amount = %s", got["n1"].Amount)
	}

	if len(res.Skipped) != 1 || res.Skipped[0].ID != "bad" {
		t.Errorf("Skipped = %v, want the negative amount record", res.Skipped)
	}
	// one bad date entry plus the undecodable file
	if len(res.ParseErrors) != 2 {
		t.Errorf("ParseErrors = %v, want 2", res.ParseErrors)
	}
	if len(res.Changed) != 3 {
		t.Errorf("Changed = %d files, want 3", len(res.Changed))
	}
}

func TestImport_SkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "streaming.json", streamingJSON)
	writeFile(t, dir, "software.toml", softwareTOML)

	first, err := Import(context.Background(), dir, nil, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}

	tracked := map[string]model.TrackedFile{}
	for _, f := range first.Changed {
		tracked[f.Path] = f
	}
	// Touching one file's size invalidates only that file.
	writeFile(t, dir, "streaming.json", streamingJSON+"\n")

	second, err := Import(context.Background(), dir, fakeTracker{files: tracked}, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", second.CacheHits)
	}
	if len(second.Changed) != 1 || second.Changed[0].Path != path {
		t.Errorf("Changed = %v, want only %s", second.Changed, path)
	}
}

func TestImport_TrackerError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "streaming.json", streamingJSON)

	boom := errors.New("db locked")
	if _, err := Import(context.Background(), dir, fakeTracker{err: boom}, testNow, nil); !errors.Is(err, boom) {
		t.Errorf("Import() error = %v, want wrapped tracker error", err)
	}
}

func TestImport_MissingDir(t *testing.T) {
	res, err := Import(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, testNow, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.TotalFiles != 0 || len(res.Subscriptions) != 0 {
		t.Errorf("res = %+v, want empty", res)
	}
}
