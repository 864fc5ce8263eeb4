package ident_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/clickcard/internal/util/ident"
)

func TestEncodeCrockford(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "empty input", input: []byte{}, want: ""},
		{name: "single byte", input: []byte{0xF5}, want: "ym"},
		{name: "two bytes", input: []byte{0xF5, 0x3A}, want: "ymx0"},
		{name: "five bytes", input: []byte{0xF5, 0x3A, 0x58, 0x9B, 0xC4}, want: "ymx5h6y4"},
		{name: "all zero bytes", input: []byte{0, 0, 0, 0}, want: "0000000"},
		{name: "all ones", input: []byte{255, 255, 255, 255}, want: "zzzzzzr"},
		{name: "uuid sized", input: make([]byte, 16), want: strings.Repeat("0", 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, EncodeCrockford(tt.input))
		})
	}
}

func TestNormalizeCrockford(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "lowercases", input: "ABC", want: "abc"},
		{name: "maps confusables", input: "OoIiLl", want: "001111"},
		{name: "drops whitespace and hyphens", input: " ab-cd\t", want: "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, NormalizeCrockford(tt.input))
		})
	}
}

func TestNewCardID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for range 100 {
		id, err := NewCardID()
		require.NoError(t, err)

		assert.Len(t, id.String(), 26)
		assert.True(t, IsCrockford(id.String()), "id %q is not crockford", id)
		assert.Equal(t, id, NormalizeCardID(strings.ToUpper(id.String())))

		_, dup := seen[id.String()]
		assert.False(t, dup, "duplicate id %q", id)
		seen[id.String()] = struct{}{}
	}
}

func TestNewAssetFilename(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for range 100 {
		name, err := NewAssetFilename()
		require.NoError(t, err)

		require.True(t, strings.HasSuffix(name, AssetExt))
		base := strings.TrimSuffix(name, AssetExt)
		assert.Len(t, base, AssetNameLength)
		assert.True(t, IsCrockford(base))
		assert.NotContains(t, name, "/")

		_, dup := seen[name]
		assert.False(t, dup, "duplicate filename %q", name)
		seen[name] = struct{}{}
	}
}

func TestNewTraceID(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewTraceID(), NewTraceID())
}
