package common

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInvitationCode(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := GenerateInvitationCode(rng)
		assert.Len(t, code, InvitationCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(invitationCodeAlphabet, r),
				"code %q contains %q outside the alphabet", code, r)
		}
		seen[code] = true
	}
	// 32^8 codes; a thousand draws colliding would mean a broken generator.
	assert.Len(t, seen, 1000)
}

func TestInvitationAlphabetAvoidsAmbiguousCharacters(t *testing.T) {
	for _, r := range "IO01lio" {
		assert.False(t, strings.ContainsRune(invitationCodeAlphabet, r),
			"ambiguous character %q must not be in the alphabet", r)
	}
}
