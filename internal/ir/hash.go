package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainSequence is the domain prefix for structural sequence keys.
// The version suffix enables future algorithm migration.
const DomainSequence = "abunai/sequence/v1"

// hashWithDomain computes SHA-256 over domain + 0x00 + parts joined by 0x00.
// The null separators prevent boundary ambiguity ("a","bc" vs "ab","c").
func hashWithDomain(domain string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SequenceKey returns the structural identity of a sequence.
//
// Two sequences share a key iff they contain the same element ids in the same
// order. Names and characteristics do not participate.
func SequenceKey(s ActionSequence) string {
	parts := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		parts[i] = string(e.ID)
	}
	return hashWithDomain(DomainSequence, parts...)
}
