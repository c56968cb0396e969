package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SecretMatcher compares a presented secret with the stored one.
// Implementations must not short-circuit on the first differing byte.
type SecretMatcher interface {
	Matches(presented, stored string) bool
}

// bcryptPrefix marks an explicitly tagged bcrypt hash in the directory.
const bcryptPrefix = "{bcrypt}"

// DelegatingMatcher picks the comparison per stored value: bcrypt hashes
// ("{bcrypt}$2a$..." or a bare "$2a$/$2b$/$2y$" hash) go through bcrypt,
// anything else is compared as plain text in constant time.
type DelegatingMatcher struct{}

// Matches implements SecretMatcher.
func (DelegatingMatcher) Matches(presented, stored string) bool {
	if hash, ok := bcryptHash(stored); ok {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
	}
	return constantTimeEqual(presented, stored)
}

// plainDummy is the stand-in secret for directories without bcrypt entries.
const plainDummy = "{dummy}not-a-real-secret"

// DummySecret returns a stored secret to compare against when the username
// is unknown, so that the rejection costs as much as a wrong secret for a
// real user. When any of the stored secrets is a bcrypt hash the dummy is a
// bcrypt hash at the highest cost found; otherwise it is plain text.
func DummySecret(stored []string) string {
	cost := 0
	for _, s := range stored {
		hash, ok := bcryptHash(s)
		if !ok {
			continue
		}
		if c, err := bcrypt.Cost([]byte(hash)); err == nil && c > cost {
			cost = c
		}
	}
	if cost == 0 {
		return plainDummy
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plainDummy), cost)
	if err != nil {
		return plainDummy
	}
	return string(hash)
}

func bcryptHash(stored string) (string, bool) {
	if h, ok := strings.CutPrefix(stored, bcryptPrefix); ok {
		return h, true
	}
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(stored, p) {
			return stored, true
		}
	}
	return "", false
}

// constantTimeEqual hashes both sides first so that neither the content nor
// the length of the stored secret leaks through timing.
func constantTimeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
