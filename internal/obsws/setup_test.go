package obsws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"abc":   "abc",
		" a/b ": "a_b",
		"a\\b":  "a_b",
		"":      "vfxmidi",
	}
	for in, want := range cases {
		if got := sanitizeName(in); got != want {
			t.Fatalf("sanitizeName(%q)=%q; want %q", in, got, want)
		}
	}

	// Long string is truncated to 120 runes
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'x'
	}
	got := sanitizeName(string(long))
	if len([]rune(got)) != 120 {
		t.Fatalf("sanitizeName should truncate to 120 runes, got %d", len([]rune(got)))
	}
}

func TestSelectFilters(t *testing.T) {
	all := []FoundFilter{
		{Source: "Blob 1", Filter: "vfxmidi", Kind: DefaultFilterKind},
		{Source: "Blob 2", Filter: "VFXMIDI slot", Kind: DefaultFilterKind},
		{Source: "Camera", Filter: "Color Correction", Kind: "color_filter"},
		{Source: "Camera", Filter: "vfxmidi blur", Kind: "blur_filter"},
	}
	got := selectFilters(all, DefaultFilterKind, "")
	assert.Len(t, got, 2)

	got = selectFilters(all, "", "vfxmidi")
	assert.Equal(t, []string{"Blob 1", "Blob 2", "Camera"}, []string{got[0].Source, got[1].Source, got[2].Source})

	assert.Empty(t, selectFilters(all, "color_filter", "vfx"))
}
