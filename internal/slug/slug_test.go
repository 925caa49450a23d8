package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Go", "go"},
		{"two words", "Machine Learning", "machine-learning"},
		{"dotted name", "Vue.js", "vuejs"},
		{"dotted with space", "ASP.NET Core", "aspnet-core"},
		{"plus plus", "C++", "c-plus-plus"},
		{"sharp", "C#", "c-sharp"},
		{"ampersand", "Rock & Roll", "rock-and-roll"},
		{"single plus", "Google+", "google-plus"},
		{"accents folded", "Café Économie", "cafe-economie"},
		{"apostrophe joins", "Don't Panic", "dont-panic"},
		{"curly apostrophe joins", "Don’t Panic", "dont-panic"},
		{"punctuation separates", "CI/CD, Docker", "ci-cd-docker"},
		{"surrounding noise", "  --Hello, World!--  ", "hello-world"},
		{"digits kept", "HTTP/2 in 2026", "http-2-in-2026"},
		{"non latin dropped", "Go 日本語", "go"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name, query string
		want        bool
	}{
		{"Vue.js", "vuejs", true},
		{"Vue.js", "VUE.JS", true},
		{"C++", "c-plus-plus", true},
		{"C++", "c", false},
		{"C#", "c-sharp", true},
		{"Go", "", false},
		{"", "", false},
		{"PostgreSQL", "postgres", false},
	}
	for _, tt := range tests {
		if got := Match(tt.name, tt.query); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.name, tt.query, got, tt.want)
		}
	}
}
