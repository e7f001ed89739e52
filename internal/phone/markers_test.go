package phone

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsFormattingInvariant(t *testing.T) {
	a, ok := Derive("(415) 555-1234", "salt")
	require.True(t, ok)
	b, ok := Derive("415-555-1234", "salt")
	require.True(t, ok)

	assert.Equal(t, a, b)
	assert.Equal(t, "1234", a.Last4)
	assert.Equal(t, "415", a.Area)

	sum := sha256.Sum256([]byte("salt4155551234"))
	assert.Equal(t, hex.EncodeToString(sum[:]), a.Hash)
}

func TestDeriveSaltChangesHash(t *testing.T) {
	a, _ := Derive("4155551234", "one")
	b, _ := Derive("4155551234", "two")
	assert.NotEqual(t, a.Hash, b.Hash)
	assert.Equal(t, a.Last4, b.Last4)
}

func TestDeriveShortNumberHasNoArea(t *testing.T) {
	m, ok := Derive("555-1234", "")
	require.True(t, ok)
	assert.Equal(t, "1234", m.Last4)
	assert.Empty(t, m.Area)
}

func TestDeriveElevenDigitNumber(t *testing.T) {
	m, ok := Derive("+1 (510) 555-0199", "s")
	require.True(t, ok)
	assert.Equal(t, "151", m.Area)
	assert.Equal(t, "0199", m.Last4)
}

func TestDeriveWithoutDigits(t *testing.T) {
	for _, raw := range []string{"", "   ", "n/a", "()-"} {
		m, ok := Derive(raw, "salt")
		assert.False(t, ok, raw)
		assert.Equal(t, Markers{}, m)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "4155551234", Digits("(415) 555-1234"))
	assert.Equal(t, "", Digits("ext."))
}
