package metadata

import "testing"

func strPtr(s string) *string { return &s }

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name       string
		raw        *string
		wantArtist string
		wantTitle  string
	}{
		{"artist and title", strPtr("Queen - Bohemian Rhapsody"), "Queen", "Bohemian Rhapsody"},
		{"no separator", strPtr("Looped Ambient Set"), UnknownArtist, "Looped Ambient Set"},
		{"split on first separator only", strPtr("Daft Punk - One More Time - Radio Edit"), "Daft Punk", "One More Time - Radio Edit"},
		{"surrounding spaces trimmed", strPtr("  Moby  -  Porcelain "), "Moby", "Porcelain"},
		{"hyphen without spaces is not a separator", strPtr("Jay-Z"), UnknownArtist, "Jay-Z"},
		{"empty title after separator", strPtr("Queen - "), "Queen", ""},
		{"empty string", strPtr(""), UnknownArtist, ""},
	}

	for _, tt := range tests {
		got := ParseTitle(tt.raw)
		if got == nil {
			t.Errorf("%s: ParseTitle returned nil", tt.name)
			continue
		}
		if got.Artist != tt.wantArtist || got.Title != tt.wantTitle {
			t.Errorf("%s: ParseTitle(%q) = {%q, %q}; want {%q, %q}",
				tt.name, *tt.raw, got.Artist, got.Title, tt.wantArtist, tt.wantTitle)
		}
	}
}

func TestParseTitle_Nil(t *testing.T) {
	if got := ParseTitle(nil); got != nil {
		t.Errorf("ParseTitle(nil) = %+v; want nil", got)
	}
}
