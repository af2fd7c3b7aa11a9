package domain

import (
	"fmt"
)

// VerifyChain recomputes every event's content hash and confirms each event's
// PrevHash matches the prior event's Hash, starting from GenesisHash. Events
// must be given in append order. Returns nil for an intact chain (an empty
// chain is trivially intact) or ErrChainBroken wrapped with the index of the
// first event that fails.
func VerifyChain(events []*Event) error {
	verifier := NewChainVerifier()
	for _, event := range events {
		if err := verifier.Next(event); err != nil {
			return err
		}
	}
	return nil
}

// ChainVerifier verifies a chain incrementally, one event at a time in append
// order. It carries the expected previous hash between calls, so callers can
// stream events from paged storage without loading the whole log.
type ChainVerifier struct {
	prevHash string
	index    int
}

// NewChainVerifier returns a verifier positioned at the start of a chain.
func NewChainVerifier() *ChainVerifier {
	return &ChainVerifier{prevHash: GenesisHash}
}

// Next verifies the next event in append order.
func (v *ChainVerifier) Next(event *Event) error {
	if event.PrevHash != v.prevHash {
		return fmt.Errorf("event %d: prev_hash mismatch: %w", v.index, ErrChainBroken)
	}

	computed, err := event.ContentHash()
	if err != nil {
		return fmt.Errorf("event %d: %w", v.index, err)
	}
	if computed != event.Hash {
		return fmt.Errorf("event %d: content hash mismatch: %w", v.index, ErrChainBroken)
	}

	v.prevHash = event.Hash
	v.index++
	return nil
}

// Verified returns the number of events verified so far.
func (v *ChainVerifier) Verified() int {
	return v.index
}
