package ledger

import (
	"fmt"
	"sync"
	"time"

	"ehealthwave/core/digest"
)

const (
	GenesisSequenceID = "genesis"

	defaultGenesisMessage = "Genesis Block for eHealthWave"
)

// Archiver mirrors appended blocks into a persistent store. The ledger
// itself stays in-memory and authoritative; an archiver is an opt-in sink.
type Archiver interface {
	ArchiveBlock(Block) error
}

// Ledger is the append-only, hash-chained block sequence. It exclusively
// owns the blocks: clients append through it and read copied snapshots,
// never reaching around it.
type Ledger struct {
	mu     sync.RWMutex
	blocks []Block

	hasher  digest.Hasher
	now     func() time.Time
	archive Archiver
}

type Option func(*Ledger) error

// WithClock overrides the block timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) error {
		l.now = now
		return nil
	}
}

// WithArchiver mirrors every block, genesis included, into the given sink.
func WithArchiver(a Archiver) Option {
	return func(l *Ledger) error {
		l.archive = a
		return nil
	}
}

// New creates a ledger seeded with its genesis block. The genesis previous
// digest is the hasher's all-zero sentinel and its digest is computed the
// same way as any other block's.
func New(hasher digest.Hasher, opts ...Option) (*Ledger, error) {
	return NewWithGenesisMessage(hasher, defaultGenesisMessage, opts...)
}

// NewWithGenesisMessage creates a ledger whose genesis payload carries the
// given message.
func NewWithGenesisMessage(hasher digest.Hasher, message string, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		hasher: hasher,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	genesis := Block{
		SequenceID: GenesisSequenceID,
		Timestamp:  l.now().UTC(),
		Payload:    Payload{"message": message},
		PrevDigest: hasher.Sentinel(),
	}
	sum, err := hasher.Sum(digestInput{
		Payload:    genesis.Payload,
		Timestamp:  genesis.Timestamp,
		PrevDigest: genesis.PrevDigest,
	})
	if err != nil {
		return nil, fmt.Errorf("could not seed genesis block: %w", err)
	}
	genesis.Digest = sum
	if l.archive != nil {
		if err := l.archive.ArchiveBlock(genesis); err != nil {
			return nil, fmt.Errorf("could not archive genesis block: %w", err)
		}
	}
	l.blocks = []Block{genesis}
	return l, nil
}

// Append creates a new block committing to the payload and the current tail,
// and appends it to the chain. The read of the tail and the insertion are
// atomic with respect to other appends, so concurrent writers cannot fork
// the chain.
func (l *Ledger) Append(p Payload) (Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := l.blocks[len(l.blocks)-1]
	blk := Block{
		SequenceID: fmt.Sprintf("block_%d", len(l.blocks)),
		Timestamp:  l.now().UTC(),
		Payload:    p,
		PrevDigest: last.Digest,
	}
	sum, err := l.hasher.Sum(digestInput{
		Payload:    blk.Payload,
		Timestamp:  blk.Timestamp,
		PrevDigest: blk.PrevDigest,
	})
	if err != nil {
		return Block{}, fmt.Errorf("could not digest block payload: %w", err)
	}
	blk.Digest = sum
	if l.archive != nil {
		// Archive before commit so the mirror never misses a block.
		if err := l.archive.ArchiveBlock(blk); err != nil {
			return Block{}, fmt.Errorf("could not archive block %s: %w", blk.SequenceID, err)
		}
	}
	l.blocks = append(l.blocks, blk)
	return blk, nil
}

// GetAll returns a snapshot of the full chain in insertion order.
func (l *Ledger) GetAll() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Block, len(l.blocks))
	copy(out, l.blocks)
	return out
}

// Where returns the blocks whose payload matches the predicate, in
// insertion order.
func (l *Ledger) Where(pred func(Block) bool) []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Block
	for _, blk := range l.blocks {
		if pred(blk) {
			out = append(out, blk)
		}
	}
	return out
}

// Get looks up a block by sequence id.
func (l *Ledger) Get(sequenceID string) (Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, blk := range l.blocks {
		if blk.SequenceID == sequenceID {
			return blk, true
		}
	}
	return Block{}, false
}

// Height returns the number of blocks in the chain, genesis included.
func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Genesis returns the chain's first block.
func (l *Ledger) Genesis() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blocks[0]
}

// Hasher exposes the digest function the chain was built with, so clients
// such as the credential registry digest values the same way the chain does.
func (l *Ledger) Hasher() digest.Hasher {
	return l.hasher
}
