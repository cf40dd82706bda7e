package common

import (
	"math/rand"
	"strings"
)

// Invitation codes avoid characters that read ambiguously (0/O, 1/I).
const (
	invitationCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	InvitationCodeLength   = 8
)

// GenerateInvitationCode returns a human-enterable code. Uniqueness is the
// caller's problem: regenerate on collision against storage.
func GenerateInvitationCode(rng *rand.Rand) string {
	var sb strings.Builder
	sb.Grow(InvitationCodeLength)
	for i := 0; i < InvitationCodeLength; i++ {
		sb.WriteByte(invitationCodeAlphabet[rng.Intn(len(invitationCodeAlphabet))])
	}
	return sb.String()
}
