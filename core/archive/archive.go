package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"ehealthwave/core/ledger"
)

// Archive is an append-only leveldb mirror of the ledger. The in-memory
// chain stays authoritative; the archive exists so an operator can keep a
// durable copy of the audit trail across restarts.
type Archive struct {
	db *leveldb.DB
}

func NewArchive(path string) (*Archive, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// ArchiveBlock persists a block under its sequence id plus an insertion
// order index. The ledger calls this under its write lock, so writes are
// already serialized.
func (a *Archive) ArchiveBlock(blk ledger.Block) error {
	data, err := blk.Serialize()
	if err != nil {
		return err
	}
	enc, err := Seal(data)
	if err != nil {
		return err
	}
	n, err := a.Height()
	if err != nil {
		return err
	}
	var height [8]byte
	binary.BigEndian.PutUint64(height[:], uint64(n+1))

	batch := new(leveldb.Batch)
	batch.Put([]byte("block:"+blk.SequenceID), enc)
	batch.Put([]byte(fmt.Sprintf("order:%016d", n)), []byte(blk.SequenceID))
	batch.Put([]byte("chain:height"), height[:])
	batch.Put([]byte("chain:tip"), []byte(blk.SequenceID))
	return a.db.Write(batch, nil)
}

// GetBlock retrieves an archived block by sequence id.
func (a *Archive) GetBlock(sequenceID string) (ledger.Block, error) {
	enc, err := a.db.Get([]byte("block:"+sequenceID), nil)
	if err != nil {
		return ledger.Block{}, err
	}
	data, err := Open(enc)
	if err != nil {
		return ledger.Block{}, err
	}
	blk, err := ledger.Deserialize(data)
	if err != nil {
		return ledger.Block{}, err
	}
	return *blk, nil
}

// GetBlockByIndex retrieves an archived block by insertion order, genesis
// at index 0.
func (a *Archive) GetBlockByIndex(n int) (ledger.Block, error) {
	id, err := a.db.Get([]byte(fmt.Sprintf("order:%016d", n)), nil)
	if err != nil {
		return ledger.Block{}, fmt.Errorf("no block at index %d", n)
	}
	return a.GetBlock(string(id))
}

// Height returns the number of archived blocks.
func (a *Archive) Height() (int, error) {
	data, err := a.db.Get([]byte("chain:height"), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint64(data)), nil
}

// TipSequenceID returns the sequence id of the most recently archived block.
func (a *Archive) TipSequenceID() (string, error) {
	data, err := a.db.Get([]byte("chain:tip"), nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListSequenceIDs returns archived sequence ids in insertion order.
func (a *Archive) ListSequenceIDs() ([]string, error) {
	iter := a.db.NewIterator(util.BytesPrefix([]byte("order:")), nil)
	defer iter.Release()

	var ids []string
	for iter.Next() {
		ids = append(ids, string(iter.Value()))
	}
	return ids, iter.Error()
}

func (a *Archive) Close() error {
	return a.db.Close()
}
