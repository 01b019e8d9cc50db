package feed

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean passthrough", "<rss><channel/></rss>", "<rss><channel/></rss>"},
		{"keeps tab lf cr", "a\tb\nc\rd", "a\tb\nc\rd"},
		{"drops bell and nul", "a\x00b\x07c", "abc"},
		{"drops delete", "a\x7fb", "ab"},
		{"drops c1 range", "a\u0085b", "ab"},
		{"drops invalid utf8", "a\xffb", "ab"},
		{"keeps multibyte", "héllo 日本語", "héllo 日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Sanitize([]byte(tt.input))); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUpgradeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"//cdn.example/a.jpg", "https://cdn.example/a.jpg"},
		{"https://x.example/a.jpg?b=1&amp;c=2", "https://x.example/a.jpg?b=1&c=2"},
		{"  https://x.example/a.jpg ", "https://x.example/a.jpg"},
		{"http://x.example/a.jpg", "http://x.example/a.jpg"},
	}

	for _, tt := range tests {
		if got := UpgradeURL(tt.input); got != tt.want {
			t.Errorf("UpgradeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
