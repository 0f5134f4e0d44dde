package search

import "testing"

func TestParse(t *testing.T) {
	t.Run("Blank Input", func(t *testing.T) {
		for _, raw := range []string{"", "   "} {
			parsed := Parse(raw)
			if parsed.Structured() {
				t.Errorf("expected no structured fields for %q, got %+v", raw, parsed)
			}
			if parsed.Raw != raw {
				t.Errorf("expected raw %q preserved, got %q", raw, parsed.Raw)
			}
		}
	})

	t.Run("Two Quoted Segments", func(t *testing.T) {
		parsed := Parse(`"Bohemian Rhapsody" "Queen"`)
		if parsed.Title != "Bohemian Rhapsody" {
			t.Errorf("expected title 'Bohemian Rhapsody', got %q", parsed.Title)
		}
		if parsed.Artist != "Queen" {
			t.Errorf("expected artist 'Queen', got %q", parsed.Artist)
		}
		if parsed.Album != "" {
			t.Errorf("expected no album, got %q", parsed.Album)
		}
	})

	t.Run("Three Quoted Segments", func(t *testing.T) {
		parsed := Parse(`"One" "Metallica" "And Justice for All"`)
		if parsed.Title != "One" || parsed.Artist != "Metallica" || parsed.Album != "And Justice for All" {
			t.Errorf("unexpected parse: %+v", parsed)
		}
	})

	t.Run("Two Quoted Segments With Trailing Text", func(t *testing.T) {
		parsed := Parse(`"One" "Metallica" justice`)
		if parsed.Album != "justice" {
			t.Errorf("expected leftover text as album, got %q", parsed.Album)
		}
	})

	t.Run("Quoted Form Wins Over Separator", func(t *testing.T) {
		parsed := Parse(`"Live and Let Die" "Wings" by Paul`)
		if parsed.Title != "Live and Let Die" || parsed.Artist != "Wings" {
			t.Errorf("expected quoted form to win, got %+v", parsed)
		}
	})

	t.Run("Separator Tokens", func(t *testing.T) {
		cases := []struct {
			raw    string
			title  string
			artist string
		}{
			{"Straßenjunge von Sido", "Straßenjunge", "Sido"},
			{"Yesterday by The Beatles", "Yesterday", "The Beatles"},
			{"Atemlos vom Fischer", "Atemlos", "Fischer"},
			{"99 Luftballons von der Nena Band", "99 Luftballons", "Nena Band"},
		}
		for _, tc := range cases {
			parsed := Parse(tc.raw)
			if parsed.Title != tc.title || parsed.Artist != tc.artist {
				t.Errorf("Parse(%q) = {title %q, artist %q}, want {%q, %q}",
					tc.raw, parsed.Title, parsed.Artist, tc.title, tc.artist)
			}
		}
	})

	t.Run("Separator Case Insensitive", func(t *testing.T) {
		parsed := Parse("Yesterday BY The Beatles")
		if parsed.Title != "Yesterday" || parsed.Artist != "The Beatles" {
			t.Errorf("unexpected parse: %+v", parsed)
		}
	})

	t.Run("Last Occurrence Splits", func(t *testing.T) {
		parsed := Parse("Stand by Me by Ben E. King")
		if parsed.Title != "Stand by Me" {
			t.Errorf("expected split at last separator, got title %q", parsed.Title)
		}
		if parsed.Artist != "Ben E. King" {
			t.Errorf("expected artist 'Ben E. King', got %q", parsed.Artist)
		}
	})

	t.Run("Last Word As Artist", func(t *testing.T) {
		parsed := Parse("Straßenjunge Sido")
		if parsed.Title != "Straßenjunge" {
			t.Errorf("expected title 'Straßenjunge', got %q", parsed.Title)
		}
		if parsed.Artist != "Sido" {
			t.Errorf("expected artist 'Sido', got %q", parsed.Artist)
		}
	})

	t.Run("Multi Word Title", func(t *testing.T) {
		parsed := Parse("Smells Like Teen Spirit Nirvana")
		if parsed.Title != "Smells Like Teen Spirit" || parsed.Artist != "Nirvana" {
			t.Errorf("unexpected parse: %+v", parsed)
		}
	})

	t.Run("Single Word", func(t *testing.T) {
		parsed := Parse("Africa")
		if parsed.Title != "Africa" {
			t.Errorf("expected title 'Africa', got %q", parsed.Title)
		}
		if parsed.Artist != "" || parsed.Album != "" {
			t.Errorf("expected no artist/album, got %+v", parsed)
		}
	})

	t.Run("Raw Always Retained", func(t *testing.T) {
		raw := `"A" "B" "C"`
		if parsed := Parse(raw); parsed.Raw != raw {
			t.Errorf("expected raw retained, got %q", parsed.Raw)
		}
	})
}
