package mappings

import (
	"image/color"
	"testing"
)

func TestTikzColor(t *testing.T) {
	got := TikzColor(color.NRGBA{R: 0x90, G: 0xEE, B: 0x90, A: 255})
	if got != "{rgb,255:red,144;green,238;blue,144}" {
		t.Fatalf("unexpected color %q", got)
	}
}

func TestTikzColor_NilIsBlack(t *testing.T) {
	if got := TikzColor(nil); got != "black" {
		t.Fatalf("expected black for a missing color, got %q", got)
	}
}
