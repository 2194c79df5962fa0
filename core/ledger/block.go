package ledger

import (
	"encoding/json"
	"time"
)

// Block is one immutable entry in the hash chain. Digest commits to the
// payload, the creation time and the previous block's digest; none of the
// fields change after creation.
type Block struct {
	SequenceID string    `json:"sequenceId"`
	Timestamp  time.Time `json:"createdAt"`
	Payload    Payload   `json:"payload"`
	PrevDigest string    `json:"previousDigest"`
	Digest     string    `json:"digest"`
}

// digestInput is the exact structure the block digest is computed over.
type digestInput struct {
	Payload    Payload   `json:"payload"`
	Timestamp  time.Time `json:"createdAt"`
	PrevDigest string    `json:"previousDigest"`
}

// Serialize encodes Block into JSON
func (b *Block) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

// Deserialize decodes JSON into Block
func Deserialize(data []byte) (*Block, error) {
	var b Block
	err := json.Unmarshal(data, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
