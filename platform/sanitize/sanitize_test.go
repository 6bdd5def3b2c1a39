package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "mend the north fence", "mend the north fence"},
		{"tags removed", "<b>harvest</b> help needed", "harvest help needed"},
		{"encoded tags removed", "&lt;script&gt;alert(1)&lt;/script&gt;potato digging", "alert(1)potato digging"},
		{"entities decoded", "hay &amp; straw", "hay & straw"},
		{"whitespace trimmed", "  barn repair  ", "barn repair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short text untouched", "apple picking", 20, "apple picking"},
		{"long text truncated", "a very long description of the work to be done", 10, "a very lon..."},
		{"trailing space trimmed before ellipsis", "chop wood now", 5, "chop..."},
		{"zero max disables truncation", "weeding", 0, "weeding"},
		{"markup stripped first", "<p>weeding</p>", 20, "weeding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.in, tt.max); got != tt.want {
				t.Errorf("Snippet(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
