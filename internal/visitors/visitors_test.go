package visitors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSignature(t *testing.T) {
	a := BuildSignature("example.com", "203.0.113.7", "Mozilla/5.0", "salt")
	b := BuildSignature("example.com", "203.0.113.7", "Mozilla/5.0", "salt")
	assert.Equal(t, a, b, "same inputs must hash identically within a day")
	assert.Len(t, a, 64)

	differentIP := BuildSignature("example.com", "203.0.113.8", "Mozilla/5.0", "salt")
	assert.NotEqual(t, a, differentIP)

	differentSite := BuildSignature("other.com", "203.0.113.7", "Mozilla/5.0", "salt")
	assert.NotEqual(t, a, differentSite)

	// The raw IP never appears in the signature.
	assert.NotContains(t, a, "203.0.113.7")
}

func TestAlias(t *testing.T) {
	sig := BuildSignature("example.com", "203.0.113.7", "Mozilla/5.0", "salt")

	alias := Alias(sig)
	assert.Equal(t, alias, Alias(sig), "alias must be stable per signature")

	parts := strings.SplitN(alias, " ", 2)
	assert.Len(t, parts, 2)
	assert.Contains(t, aliasAdjectives, parts[0])
	assert.Contains(t, aliasAnimals, parts[1])
}
