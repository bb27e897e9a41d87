package globmatch

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, subject string
		want             bool
	}{
		{"*/api/v1/*", "https://example.com/api/v1/users", true},
		{"*/api/v1/*", "https://example.com/api/v2/users", false},
		{"*", "", true},
		{"*", "anything", true},
		{"https://example.com/*", "https://example.com/path", true},
		{"https://example.com/*", "https://other.com/path", false},
		{"*/data.json", "https://example.com/data.json", true},
		{"*/data.json", "https://example.com/data.json.bak", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{"a*b*c", "abc", true},
		{"a*b*c", "axxbxxc", true},
		{"a*b*c", "ac", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, tt.subject); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.subject, got, tt.want)
		}
	}
}
