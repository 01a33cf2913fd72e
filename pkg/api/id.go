package api

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	jobIDPrefix     = "job_"
	messageIDPrefix = "msg_"

	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 24
)

// NewJobID generates a unique job identifier with the "job_" prefix.
func NewJobID() string {
	return jobIDPrefix + randomAlphanumeric(idLength)
}

// NewMessageID generates a unique message identifier with the "msg_" prefix.
func NewMessageID() string {
	return messageIDPrefix + randomAlphanumeric(idLength)
}

// ValidateJobID reports whether id has the expected job identifier shape.
func ValidateJobID(id string) bool {
	return validatePrefixedID(id, jobIDPrefix)
}

// ValidateMessageID reports whether id has the expected message identifier shape.
func ValidateMessageID(id string) bool {
	return validatePrefixedID(id, messageIDPrefix)
}

func validatePrefixedID(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	body := id[len(prefix):]
	if len(body) != idLength {
		return false
	}
	for _, c := range body {
		if !strings.ContainsRune(idAlphabet, c) {
			return false
		}
	}
	return true
}

func randomAlphanumeric(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("api: reading random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}
