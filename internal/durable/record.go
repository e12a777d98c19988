// Package durable implements the Durable Memory Store: an append-only log of
// typed records backed by a write-ahead log, optional zstd compression,
// optional AES-256-GCM encryption with envelope-rewrapped session keys, a
// SHA-256 hash-chained audit log, per-field secondary indices, and
// snapshot/rollback.
package durable

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordType identifies the kind of event a MemoryRecord captures.
type RecordType string

const (
	RecordTemporal   RecordType = "Temporal"
	RecordSymbolic   RecordType = "Symbolic"
	RecordProcedural RecordType = "Procedural"
	RecordReflexion  RecordType = "Reflexion"
	RecordPerception RecordType = "Perception"
)

// MemoryRecord is the atomic, immutable unit of durable storage.
//
// Expectations:
//   - ID is a canonical 8-4-4-4-12 UUID v4, assigned by NewRecord when empty
//   - Timestamp is UTC and serializes as RFC3339
//   - Integrity, when set, is a lowercase-hex SHA-256 over the record with
//     Integrity itself cleared, computed via canonical JSON
type MemoryRecord struct {
	ID        uuid.UUID       `json:"id"`
	Type      RecordType      `json:"record_type"`
	Timestamp time.Time       `json:"timestamp"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Target    string          `json:"target"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Integrity string          `json:"integrity,omitempty"`
}

// NewRecord builds a MemoryRecord, assigning a fresh UUID v4 and the current
// UTC timestamp. metadata may be nil.
func NewRecord(typ RecordType, actor, action, target string, metadata json.RawMessage) MemoryRecord {
	return MemoryRecord{
		ID:        uuid.New(),
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		Target:    target,
		Metadata:  metadata,
	}
}

// canonicalJSON marshals r deterministically: struct fields come out in a
// fixed order with no insignificant whitespace, and Metadata's raw bytes are
// compacted but keep their key order as supplied (they are not re-sorted).
// Used identically for on-disk storage and for hashing so records round-trip
// bit-identical per spec §8.
func canonicalJSON(r MemoryRecord) ([]byte, error) {
	return json.Marshal(r)
}

// ComputeIntegrity returns the lowercase-hex SHA-256 of r with Integrity
// cleared, canonicalised via the same serializer used to store it.
func ComputeIntegrity(r MemoryRecord) (string, error) {
	r.Integrity = ""
	data, err := canonicalJSON(r)
	if err != nil {
		return "", fmt.Errorf("durable: canonicalize record: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Seal computes and sets r.Integrity in place, returning the updated record.
func Seal(r MemoryRecord) (MemoryRecord, error) {
	h, err := ComputeIntegrity(r)
	if err != nil {
		return r, err
	}
	r.Integrity = h
	return r, nil
}

// VerifyIntegrity reports whether r.Integrity (if set) matches a freshly
// computed hash. A record with no Integrity set always verifies true.
func VerifyIntegrity(r MemoryRecord) (bool, error) {
	if r.Integrity == "" {
		return true, nil
	}
	want := r.Integrity
	got, err := ComputeIntegrity(r)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
