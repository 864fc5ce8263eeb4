package ident

import (
	"strings"
)

const crockfordAlphabet = "0123456789abcdefghjkmnpqrstvwxyz" // Crockford's Base32 alphabet, lowercase

// EncodeCrockford encodes input using Crockford's Base32 alphabet in lowercase.
// Trailing bits are left-aligned into a final symbol; no padding is emitted.
func EncodeCrockford(input []byte) string {
	var (
		out   strings.Builder
		bits  uint
		accum uint
	)

	out.Grow((len(input)*8 + 4) / 5)

	for _, b := range input {
		accum = accum<<8 | uint(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			out.WriteByte(crockfordAlphabet[(accum>>bits)&0x1F])
		}

		accum &= (1 << bits) - 1
	}

	if bits > 0 {
		out.WriteByte(crockfordAlphabet[(accum<<(5-bits))&0x1F])
	}

	return out.String()
}

// NormalizeCrockford folds common transcription variants of a Crockford string:
// whitespace and hyphens are dropped, case is folded and O, I, L map to 0, 1, 1.
func NormalizeCrockford(input string) string {
	var out strings.Builder

	for _, char := range strings.ToLower(input) {
		switch char {
		case ' ', '\t', '\n', '-':
			continue
		case 'o':
			out.WriteRune('0')
		case 'i', 'l':
			out.WriteRune('1')
		default:
			out.WriteRune(char)
		}
	}

	return out.String()
}

// IsCrockford reports whether s only contains lowercase Crockford symbols.
func IsCrockford(s string) bool {
	if s == "" {
		return false
	}

	for _, char := range s {
		if !strings.ContainsRune(crockfordAlphabet, char) {
			return false
		}
	}

	return true
}
