package palette

import (
	"errors"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#282C34", Color{0x28, 0x2c, 0x34}},
		{"ffffff", Color{255, 255, 255}},
		{"#000000", Color{}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHex_Invalid(t *testing.T) {
	for _, in := range []string{"", "#fff", "#12345g", "nothex!"} {
		if _, err := ParseHex(in); !errors.Is(err, ErrBadHex) {
			t.Errorf("ParseHex(%q): expected ErrBadHex, got %v", in, err)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB(0xab, 0xb2, 0xbf)
	if c.Hex() != "#abb2bf" {
		t.Errorf("unexpected hex %s", c.Hex())
	}
	back, err := ParseHex(c.Hex())
	if err != nil || back != c {
		t.Errorf("round trip failed: %v %v", back, err)
	}
}

func TestMix(t *testing.T) {
	a := RGB(0, 100, 200)
	b := RGB(200, 100, 0)

	if Mix(a, b, 0) != a {
		t.Error("mix at 0 should return a")
	}
	if Mix(a, b, 1) != b {
		t.Error("mix at 1 should return b")
	}
	mid := Mix(a, b, 0.5)
	if mid != RGB(100, 100, 100) {
		t.Errorf("expected midpoint 100,100,100, got %v", mid)
	}
	if Mix(a, b, -1) != a || Mix(a, b, 2) != b {
		t.Error("mix should clamp progress")
	}
}

func TestIsDark(t *testing.T) {
	if !ThemeOneDark.Background.IsDark() {
		t.Error("one_dark background should be dark")
	}
	if ThemeBoring.Background.IsDark() {
		t.Error("white should not be dark")
	}
}

func TestGetTheme(t *testing.T) {
	th, ok := GetTheme("gruvbox_light")
	if !ok || th.Name != "gruvbox_light" {
		t.Fatalf("expected gruvbox_light, got %s (%v)", th.Name, ok)
	}
	th, ok = GetTheme("nonexistent")
	if ok {
		t.Error("expected miss for unknown theme")
	}
	if th.Name != DefaultTheme.Name {
		t.Errorf("expected default theme fallback, got %s", th.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
	if len(th.Accents()) != 6 {
		t.Error("expected six accents")
	}
}
