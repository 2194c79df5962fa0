package records

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ehealthwave/core/audit"
	"ehealthwave/core/ledger"
)

// DocumentNotFoundError is returned when a document id is not in the store.
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("records: document %q not found", e.DocumentID)
}

// DocumentMeta describes an uploaded medical document. The document body
// lives in external storage; the chain carries the upload and sharing
// events and this store keeps the queryable metadata.
type DocumentMeta struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	FileType    string    `json:"fileType"`
	FileSize    int64     `json:"fileSize"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedOn  time.Time `json:"uploadedOn"`
	Status      string    `json:"status"`
	ChainDigest string    `json:"chainDigest,omitempty"`
	SharedWith  []string  `json:"sharedWith"`
	Tags        []string  `json:"tags"`
}

// DocumentStore is the document metadata registry. Like the credential
// registry it is a read/append-only client of the ledger, never reaching
// around it.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*DocumentMeta

	chain  *ledger.Ledger
	logger audit.Logger
}

func NewDocumentStore(chain *ledger.Ledger, logger audit.Logger) *DocumentStore {
	if logger == nil {
		logger = audit.NopLogger{}
	}
	return &DocumentStore{
		docs:   make(map[string]*DocumentMeta),
		chain:  chain,
		logger: logger,
	}
}

// Upload registers a document's metadata and appends the upload event to
// the chain. The document starts shared with the patient and the uploading
// doctor.
func (ds *DocumentStore) Upload(file ledger.FileMetadata, patientID, doctorID string, tags []string) (DocumentMeta, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	documentID := "doc_" + uuid.New().String()
	now := time.Now().UTC()
	blk, err := ds.chain.Append(ledger.NewMedicalDocument(documentID, patientID, doctorID, file, tags, now))
	if err != nil {
		return DocumentMeta{}, fmt.Errorf("records: could not record document upload: %w", err)
	}

	meta := &DocumentMeta{
		ID:          documentID,
		FileName:    file.Name,
		FileType:    file.Type,
		FileSize:    file.Size,
		UploadedBy:  doctorID,
		UploadedOn:  now,
		Status:      "verified",
		ChainDigest: blk.Digest,
		SharedWith:  []string{patientID, doctorID},
		Tags:        tags,
	}
	ds.docs[documentID] = meta
	ds.logger.LogEvent(audit.Event{
		Timestamp: now,
		EventType: "upload_document",
		EntityID:  documentID,
		Result:    "success",
		Metadata:  map[string]string{"uploadedBy": doctorID},
	})
	return *meta, nil
}

// Share makes a document visible to another party. Re-sharing with a party
// that already has visibility is a no-op success and appends nothing.
func (ds *DocumentStore) Share(documentID, sharedWithID string) (bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	meta, ok := ds.docs[documentID]
	if !ok {
		return false, &DocumentNotFoundError{DocumentID: documentID}
	}
	for _, id := range meta.SharedWith {
		if id == sharedWithID {
			return true, nil
		}
	}
	blk, err := ds.chain.Append(ledger.NewDocumentSharing(documentID, sharedWithID, time.Now().UTC()))
	if err != nil {
		return false, err
	}
	meta.SharedWith = append(meta.SharedWith, sharedWithID)
	ds.logger.LogEvent(audit.Event{
		Timestamp: time.Now().UTC(),
		EventType: "share_document",
		EntityID:  documentID,
		Result:    "success",
		Metadata:  map[string]string{"sharedWithId": sharedWithID},
	})
	return blk.Digest != "", nil
}

// DocumentsFor returns the documents visible to a user, newest first.
func (ds *DocumentStore) DocumentsFor(userID string) []DocumentMeta {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var out []DocumentMeta
	for _, meta := range ds.docs {
		for _, id := range meta.SharedWith {
			if id == userID {
				out = append(out, *meta)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedOn.After(out[j].UploadedOn)
	})
	return out
}

// Get looks up document metadata by id.
func (ds *DocumentStore) Get(documentID string) (DocumentMeta, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	meta, ok := ds.docs[documentID]
	if !ok {
		return DocumentMeta{}, false
	}
	return *meta, true
}

// VerifyIntegrity proves the backing chain intact. Per-document proof would
// need a block-level inclusion check; the whole-chain walk covers it.
func (ds *DocumentStore) VerifyIntegrity() bool {
	return ds.chain.Verify()
}
