package suggest

import (
	"reflect"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"zona", "zone", 1},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClosest(t *testing.T) {
	keys := []string{"api_url", "poll_interval", "waitlist_interval", "zone", "push_url"}
	tests := []struct {
		name string
		word string
		want []string
	}{
		{"typo", "pol_interval", []string{"poll_interval"}},
		{"case and dashes", "--Poll-Interval", []string{"poll_interval"}},
		{"prefix", "waitlist", []string{"waitlist_interval"}},
		{"short word", "zon", []string{"zone"}},
		{"nothing close", "restaurant", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Closest(tt.word, keys); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Closest(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestFlagHint(t *testing.T) {
	if got := FlagHint("--Personas"); got != "--people" {
		t.Errorf("FlagHint(--Personas) = %q, want %q", got, "--people")
	}
	if got := FlagHint("--people"); got != "" {
		t.Errorf("FlagHint(--people) = %q, want empty", got)
	}
}

func TestMessage(t *testing.T) {
	if got := Message("emial", []string{"email", "nombre"}); got != "did you mean email?" {
		t.Errorf("Message = %q, want %q", got, "did you mean email?")
	}
	if got := Message("xyzzy", []string{"email"}); got != "" {
		t.Errorf("Message = %q, want empty", got)
	}
}
