package pkg

import (
	"math/rand"

	"github.com/google/uuid"
)

// codeAlphabet leaves out 0/O, 1/I and L so codes read back unambiguously.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateRoomCode - returns a shareable room code of the given length.
func GenerateRoomCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))] //nolint:gosec // codes are not secrets
	}

	return string(code)
}

// GenerateConnectionID - returns an opaque identity for a live connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}
