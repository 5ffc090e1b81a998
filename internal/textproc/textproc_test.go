package textproc

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  Sugar,   Palm\tOil!! and Salt*  ")
	want := "Sugar, Palm Oil and Salt"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeKeepsDevanagari(t *testing.T) {
	got := Normalize("चीनी, नमक")
	if got != "चीनी, नमक" {
		t.Errorf("Normalize = %q, Devanagari must survive", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("sugar, salt"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate("   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank input: got %v, want ErrEmptyInput", err)
	}
	if err := Validate(strings.Repeat("a", MaxInputLen+1)); !errors.Is(err, ErrInputTooLong) {
		t.Errorf("long input: got %v, want ErrInputTooLong", err)
	}
}

func TestExtractIngredientsWithMarker(t *testing.T) {
	text := "Brand X Cookies. Ingredients: Wheat Flour, Sugar, Palm Oil, Salt. Nutrition Facts: Energy 500kcal"
	got := ExtractIngredients(text)
	want := []string{"Wheat Flour", "Sugar", "Palm Oil", "Salt."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractIngredientsContainsMarker(t *testing.T) {
	got := ExtractIngredients("Contains: milk solids, cocoa butter, emulsifier (soy lecithin)")
	want := []string{"milk solids", "cocoa butter", "emulsifier (soy lecithin)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractIngredientsNoMarker(t *testing.T) {
	got := ExtractIngredients("sugar, salt, x, citric acid")
	want := []string{"sugar", "salt", "citric acid"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("single-char items must be dropped: got %v, want %v", got, want)
	}
}

func TestExtractIngredientsStopsAtAllergen(t *testing.T) {
	got := ExtractIngredients("Ingredients: oats, honey Allergen advice: contains gluten")
	want := []string{"oats", "honey"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCleanIngredient(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Palm Oil (22%)", "Palm Oil"},
		{"2. Sugar", "Sugar"},
		{"  Wheat   Flour ", "Wheat Flour"},
	}
	for _, c := range cases {
		if got := CleanIngredient(c.in); got != c.want {
			t.Errorf("CleanIngredient(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
