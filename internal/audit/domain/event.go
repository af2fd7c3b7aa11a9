package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenesisHash is the previous-hash value of the first event in a chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Event is a single append-only audit record. Events are created exactly once
// per gate/execution transition, appended, and never modified or deleted.
type Event struct {
	ID               uuid.UUID      // Unique identifier (UUIDv7)
	Kind             EventKind      // One of the 12 enumerated kinds
	Timestamp        time.Time      // UTC creation time
	UserID           string         // Acting user
	TokenFingerprint string         // Fingerprint of the token in use
	Domain           string         // Target domain, when applicable
	Method           string         // Target method, when applicable
	Outcome          Outcome        // success, denied, or failed
	Reason           string         // Required when Outcome != success
	Metadata         map[string]any // Optional structured context
	Hash             string         // SHA-256 hex over all other fields
	PrevHash         string         // Hash of the previous event (GenesisHash if first)
}

// ContentHash computes the SHA-256 hex digest over the event's canonical byte
// representation. PrevHash is part of the canonical form, so the hash both
// covers the event's content and commits to its position in the chain.
func (e *Event) ContentHash() (string, error) {
	canonical, err := e.canonicalize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize converts the event to a canonical byte representation.
// Uses length-prefixed encoding for variable-length fields to prevent
// ambiguity between adjacent values.
func (e *Event) canonicalize() ([]byte, error) {
	// Typical event encodes well under 1KB
	buf := make([]byte, 0, 1024)

	buf = append(buf, e.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(string(e.Kind)))
	buf = appendLengthPrefixed(buf, []byte(e.UserID))
	buf = appendLengthPrefixed(buf, []byte(e.TokenFingerprint))
	buf = appendLengthPrefixed(buf, []byte(e.Domain))
	buf = appendLengthPrefixed(buf, []byte(e.Method))
	buf = appendLengthPrefixed(buf, []byte(string(e.Outcome)))
	buf = appendLengthPrefixed(buf, []byte(e.Reason))

	if e.Metadata != nil {
		metadataBytes, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	// Timestamp as Unix microseconds: the database timestamp columns keep
	// microsecond precision, so anything finer would not survive a round trip
	// through storage and the recomputed hash would no longer match.
	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(e.Timestamp.UnixMicro()))
	buf = append(buf, timeBytes...)

	buf = appendLengthPrefixed(buf, []byte(e.PrevHash))

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Validate checks the structural invariants of an event before it is sealed
// into the chain: a non-success outcome must carry a reason.
func (e *Event) Validate() error {
	if e.Outcome != OutcomeSuccess && strings.TrimSpace(e.Reason) == "" {
		return ErrMissingReason
	}
	return nil
}
