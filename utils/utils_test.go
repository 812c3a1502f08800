package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "fan@example.com", NormalizeEmail("  Fan@Example.COM  "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sommer Traum", "sommer-traum"},
		{"Süße Überraschung", "suesse-ueberraschung"},
		{"Mix! With? Symbols", "mix-with-symbols"},
		{"  Beeren   Blitz  ", "beeren-blitz"},
		{"Köstlich-123", "koestlich-123"},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestUTCTime(t *testing.T) {
	assert.Equal(t, time.UTC, UTCNow().Location())
	assert.InDelta(t, time.Now().Unix(), UTCNowUnix(), 2)
}

func TestPtrHelpers(t *testing.T) {
	v := ToPtr("x")
	assert.Equal(t, "x", *v)

	assert.False(t, IsTrue(nil))
	assert.False(t, IsTrue(ToPtr(false)))
	assert.True(t, IsTrue(ToPtr(true)))
}
