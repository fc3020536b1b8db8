package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/subtrackr/internal/model"
)

var parseNow = time.Date(2024, 12, 13, 9, 30, 0, 0, time.UTC)

// writeImport creates a temp import file and returns a DiscoveredFile for it.
func writeImport(t *testing.T, name, content string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	f, ok := FormatFor(name)
	if !ok {
		t.Fatalf("no format for %s", name)
	}
	return DiscoveredFile{Path: path, Format: f}
}

func TestParseFile_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json object", "subs.json", `{"subscriptions":[{"id":"n","name":"Netflix","amount":15.99,"category":"Streaming","next_billing":"2024-12-15"}]}`},
		{"json array", "subs.json", `[{"id":"n","name":"Netflix","amount":"15.99","category":"Streaming","next_billing":"2024-12-15"}]`},
		{"yaml", "subs.yml", "subscriptions:\n  - id: n\n    name: Netflix\n    amount: 15.99\n    category: Streaming\n    next_billing: \"2024-12-15\"\n"},
		{"toml", "subs.toml", "[[subscriptions]]\nid = \"n\"\nname = \"Netflix\"\namount = \"$15.99\"\ncategory = \"Streaming\"\nnext_billing = \"2024-12-15\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseFile(writeImport(t, tt.file, tt.content), parseNow)
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if len(res.Subscriptions) != 1 {
				t.Fatalf("got %d subscriptions, want 1", len(res.Subscriptions))
			}
			s := res.Subscriptions[0]
			if s.ID != "n" || s.Name != "Netflix" || s.Category != "Streaming" {
				t.Errorf("sub = %+v", s)
			}
			if s.Amount.StringFixed(2) != "15.99" {
				t.Errorf("Amount = %s, want 15.99", s.Amount)
			}
			if want := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC); !s.NextBillingDate.Equal(want) {
				t.Errorf("NextBillingDate = %s, want %s", s.NextBillingDate, want)
			}
			if s.Status != model.StatusActive {
				t.Errorf("Status = %s, want default active", s.Status)
			}
			if !s.CreatedAt.Equal(parseNow) {
				t.Errorf("CreatedAt = %s, want parse time", s.CreatedAt)
			}
		})
	}
}

func TestParse_EntryErrorsDropRecord(t *testing.T) {
	doc := `{"subscriptions":[
		{"name":"Good","amount":1,"category":"Misc","next_billing":"2024-12-20"},
		{"name":"BadDate","amount":1,"category":"Misc","next_billing":"20/12/2024"},
		{"name":"BadStatus","amount":1,"category":"Misc","next_billing":"2024-12-20","status":"expired"}
	]}`

	res := Parse([]byte(doc), FormatJSON, parseNow)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if len(res.Subscriptions) != 1 || res.Subscriptions[0].Name != "Good" {
		t.Errorf("Subscriptions = %v, want only Good", res.Subscriptions)
	}
	if len(res.ParseErrors) != 2 {
		t.Fatalf("ParseErrors = %v, want 2", res.ParseErrors)
	}
	if !strings.Contains(res.ParseErrors[0], "BadDate") {
		t.Errorf("ParseErrors[0] = %q, want the entry name", res.ParseErrors[0])
	}
}

func TestParse_DeterministicID(t *testing.T) {
	doc := []byte("subscriptions:\n  - name: Spotify\n    amount: 9.99\n    category: Music\n    next_billing: \"2024-12-18\"\n")

	a := Parse(doc, FormatYAML, parseNow)
	b := Parse(doc, FormatYAML, parseNow.Add(time.Hour))
	if a.Err != nil || b.Err != nil {
		t.Fatalf("errors: %v %v", a.Err, b.Err)
	}
	if a.Subscriptions[0].ID == "" || a.Subscriptions[0].ID != b.Subscriptions[0].ID {
		t.Errorf("IDs %q and %q should match across imports", a.Subscriptions[0].ID, b.Subscriptions[0].ID)
	}

	other := Parse([]byte(strings.Replace(string(doc), "Music", "Audio", 1)), FormatYAML, parseNow)
	if other.Subscriptions[0].ID == a.Subscriptions[0].ID {
		t.Error("different category produced the same ID")
	}
}

func TestParse_NegativeAmountSurvivesDecoding(t *testing.T) {
	// Field validation happens downstream; decoding keeps the value.
	res := Parse([]byte(`[{"name":"X","amount":-2.5,"category":"Misc","next_billing":"2024-12-20"}]`), FormatJSON, parseNow)
	if len(res.Subscriptions) != 1 || !res.Subscriptions[0].Amount.IsNegative() {
		t.Errorf("Subscriptions = %v", res.Subscriptions)
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		res := Parse([]byte("subscriptions: [[[ {"), f, parseNow)
		if res.Err == nil {
			t.Errorf("%s: expected decode error", f)
		}
	}
	if res := Parse([]byte("{}"), "xml", parseNow); res.Err == nil {
		t.Error("unsupported format should error")
	}
}

func TestParse_BadAmount(t *testing.T) {
	res := Parse([]byte(`[{"name":"X","amount":"ten","category":"Misc","next_billing":"2024-12-20"}]`), FormatJSON, parseNow)
	if res.Err == nil {
		t.Error("non-numeric amount should fail decoding")
	}
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.json"), Format: FormatJSON}, parseNow)
	if res.Err == nil {
		t.Error("expected read error")
	}
}
