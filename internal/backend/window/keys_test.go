package window

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/cellgrid/internal/input"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		code int32
		want input.Key
	}{
		{rl.KeyA, "a"},
		{rl.KeyZ, "z"},
		{rl.KeyZero, "0"},
		{rl.KeyNine, "9"},
		{rl.KeySpace, "space"},
		{rl.KeyDelete, "delete"},
		{rl.KeyF12, ""},
	}
	for _, tt := range tests {
		if got := keyName(tt.code); got != tt.want {
			t.Errorf("keyName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
