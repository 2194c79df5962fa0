package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrBrokenLink     = errors.New("ledger: previous digest does not match parent block")
	ErrDigestMismatch = errors.New("ledger: stored digest does not match recomputed digest")
)

// Verify walks the full chain recomputing digests and re-checking linkage.
// Genesis is trusted axiomatically. This is the only read path that proves
// integrity instead of assuming it.
func (l *Ledger) Verify() bool {
	_, err := l.VerifyDetail()
	return err == nil
}

// VerifyDetail is Verify with a position: on corruption it returns the index
// of the first offending block and either ErrBrokenLink or
// ErrDigestMismatch. On an intact chain it returns -1, nil.
func (l *Ledger) VerifyDetail() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := 1; i < len(l.blocks); i++ {
		cur := l.blocks[i]
		prev := l.blocks[i-1]

		if cur.PrevDigest != prev.Digest {
			return i, fmt.Errorf("block %s: %w", cur.SequenceID, ErrBrokenLink)
		}

		sum, err := l.hasher.Sum(digestInput{
			Payload:    cur.Payload,
			Timestamp:  cur.Timestamp,
			PrevDigest: cur.PrevDigest,
		})
		if err != nil {
			return i, fmt.Errorf("block %s: %w", cur.SequenceID, err)
		}
		if sum != cur.Digest {
			return i, fmt.Errorf("block %s: %w", cur.SequenceID, ErrDigestMismatch)
		}
	}
	return -1, nil
}
