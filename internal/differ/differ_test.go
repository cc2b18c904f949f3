package differ

import (
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

func TestReplacement_NoChange(t *testing.T) {
	for _, s := range []string{"", "a", "hello world", "héllo \U0001F600"} {
		if p := Replacement(s, s); p != nil {
			t.Errorf("Replacement(%q, %q) = %+v, want nil", s, s, p)
		}
	}
}

func TestReplacement_WhitespaceEquivalence(t *testing.T) {
	tests := []struct {
		old, new string
		same     bool
	}{
		{"a b", "a b", true},
		{"a\tb", "a b", true},
		{"a b", "a\nb", true},
		{"a b", "a  b", false}, // extra unit is a real edit
		{"a b", "a-b", false},
	}
	for _, tt := range tests {
		got := Replacement(tt.old, tt.new) == nil
		if got != tt.same {
			t.Errorf("Replacement(%q, %q): nil = %v, want %v", tt.old, tt.new, got, tt.same)
		}
	}
}

func TestReplacement_SingleEdit(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     Patch
	}{
		{"typed suffix", "hell", "hello", Patch{Location: 4, Length: 0, Text: "o"}},
		{"deleted suffix", "hello", "hell", Patch{Location: 4, Length: 1, Text: ""}},
		{"nbsp in prefix", " \u00A0 text", " \u00A0 test", Patch{Location: 5, Length: 1, Text: "s"}},
		{"auto punctuation", "a  ", "a.", Patch{Location: 1, Length: 2, Text: "."}},
		{"insert into empty", "", "a", Patch{Location: 0, Length: 0, Text: "a"}},
		{"surrogate aware", "ab\U0001F600cd", "ab\U0001F601cd", Patch{Location: 2, Length: 2, Text: "\U0001F601"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Replacement(tt.old, tt.new)
			if got == nil {
				t.Fatalf("Replacement(%q, %q) = nil", tt.old, tt.new)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
			if patched := Apply(tt.old, got); patched != tt.new {
				t.Errorf("Apply = %q, want %q", patched, tt.new)
			}
		})
	}
}

func TestReplacement_DisjointEditsConverge(t *testing.T) {
	old, new := "text", "fexf"

	p := Replacement(old, new)
	if p == nil || !p.HasMore {
		t.Fatalf("first patch = %+v, want HasMore", p)
	}

	cur := old
	for rounds := 0; ; rounds++ {
		if rounds > 8 {
			t.Fatalf("did not converge, stuck at %q", cur)
		}
		p := Replacement(cur, new)
		if p == nil {
			break
		}
		cur = Apply(cur, p)
		if !p.HasMore {
			break
		}
	}
	if cur != new {
		t.Errorf("converged to %q, want %q", cur, new)
	}
}

// TestReplacement_AgainstMyers cross-checks the iterated single-region
// patches against a full Myers diff applied by gotextdiff: both paths must
// reconcile old into the same final string.
func TestReplacement_AgainstMyers(t *testing.T) {
	cases := [][2]string{
		{"the quick brown fox", "the slow brown cat"},
		{"abcdef", "abXdYf"},
		{"hello world", "goodbye world"},
		{"line one\nline two", "line 1\nline two\nline three"},
		{"", "fresh"},
		{"stale", ""},
	}
	for _, c := range cases {
		old, new := c[0], c[1]

		edits := myers.ComputeEdits(span.URIFromPath("doc.txt"), old, new)
		fromMyers := gotextdiff.ApplyEdits(old, edits)

		cur := old
		for rounds := 0; rounds < 16; rounds++ {
			p := Replacement(cur, new)
			if p == nil {
				break
			}
			cur = Apply(cur, p)
			if !p.HasMore {
				break
			}
		}

		if cur != fromMyers || cur != new {
			t.Errorf("diff(%q, %q): iterated = %q, myers = %q", old, new, cur, fromMyers)
		}
	}
}

func TestApply_ClampsOutOfRange(t *testing.T) {
	got := Apply("abc", &Patch{Location: 2, Length: 10, Text: "Z"})
	if got != "abZ" {
		t.Errorf("got %q, want %q", got, "abZ")
	}
}
