package lingua

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "rote schuhe", []string{"rote", "schuhe"}},
		{"lowercases", "Adidas Sneaker", []string{"adidas", "sneaker"}},
		{"letter digit transition", "Sneaker42", []string{"sneaker", "42"}},
		{"digit letter transition", "42er", []string{"42", "er"}},
		{"camel case transition", "AquaStop", []string{"aqua", "stop"}},
		{"strips punctuation", "schuhe, rot!", []string{"schuhe", "rot"}},
		{"umlauts survive", "grüne Äpfel", []string{"grüne", "äpfel"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_OverlappingTransitions(t *testing.T) {
	// Both runes of a matched boundary pair are consumed, so the second
	// transition of a digit-letter-digit chain is never examined.
	got := Normalize("a1b")
	want := []string{"a", "1b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize(a1b) = %v, want %v", got, want)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"Sneaker42 rot!", "AquaStop 3000", "grüne Äpfel"} {
		once := Normalize(in)
		twice := Normalize(strings.Join(once, " "))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %q: %v vs %v", in, once, twice)
		}
	}
}

func TestTrimQuery(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		class CharClass
		want  string
	}{
		{"trims space", "  schuhe  ", 60, ClassDefault, "schuhe"},
		{"strips punctuation", "schuhe!!", 60, ClassDefault, "schuhe"},
		{"keeps inner hyphen", "t-shirt", 60, ClassDefault, "t-shirt"},
		{"strips edge hyphens", "--rot--", 60, ClassDefault, "rot"},
		{"caps at limit runes", "abcdefgh", 4, ClassDefault, "abcd"},
		{"caps before cleaning", "äöüäöü", 3, ClassDefault, "äöü"},
		{"comma default", "a,b", 60, ClassDefault, "a b"},
		{"comma permissive", "a,b", 60, ClassPermissive, "a,b"},
		{"underscore permissive", "a_b", 60, ClassPermissive, "a_b"},
		{"pipe and dot kept", "a.b|c", 60, ClassDefault, "a.b|c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimQuery(tt.in, tt.limit, tt.class); got != tt.want {
				t.Errorf("TrimQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanPhrase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Some emoji \U0001f600 SPACED   term  ", "some emoji spaced term"},
		{"T-Shirt 3.0", "t-shirt 3.0"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := CleanPhrase(tt.in); got != tt.want {
			t.Errorf("CleanPhrase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsGerman(t *testing.T) {
	for locale, want := range map[string]bool{
		"de-de": true,
		"de-at": true,
		"de":    true,
		"DE-DE": true,
		"en-us": false,
		"denim": false,
		"":      false,
	} {
		if got := IsGerman(locale); got != want {
			t.Errorf("IsGerman(%q) = %v, want %v", locale, got, want)
		}
	}
}

func TestHyphenate_NonGermanIdentity(t *testing.T) {
	in := []string{"produkt", "rolle"}
	got := Hyphenate(in, "en-us")
	if !reflect.DeepEqual(got, in) {
		t.Errorf("expected identity for en-us, got %v", got)
	}
}

func TestHyphenate_German(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"exception word", []string{"produkt"}, []string{"pro", "dukt"}},
		{"exception compound", []string{"kinderwagen"}, []string{"kin", "der", "wa", "gen"}},
		{"double consonant", []string{"rolle"}, []string{"rol", "le"}},
		{"too short", []string{"rot"}, []string{"rot"}},
		{"mixed", []string{"rote", "produkte"}, []string{"ro", "te", "pro", "duk", "te"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hyphenate(tt.in, "de-de")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hyphenate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
