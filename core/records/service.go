package records

import (
	"fmt"
	"time"

	"ehealthwave/core/audit"
	"ehealthwave/core/ledger"
)

// RecordNotFoundError is returned by sharing and attachment operations when
// the referenced record id does not exist in the ledger.
type RecordNotFoundError struct {
	RecordID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("records: record %q not found in ledger", e.RecordID)
}

// RecordView is the projection of a medical record block handed to callers.
type RecordView struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"createdAt"`
	Data      map[string]interface{} `json:"data"`
	Digest    string                 `json:"digest"`
}

// Service is a thin query/write facade over the ledger restricted to the
// medical-record payload kind. It never validates the record body: that is
// opaque caller-defined data.
type Service struct {
	chain  *ledger.Ledger
	logger audit.Logger
}

func NewService(chain *ledger.Ledger, logger audit.Logger) *Service {
	if logger == nil {
		logger = audit.NopLogger{}
	}
	return &Service{chain: chain, logger: logger}
}

// AddRecord appends a medical record block for the subject user and returns
// the new block.
func (s *Service) AddRecord(subjectUserID string, body map[string]interface{}) (ledger.Block, error) {
	blk, err := s.chain.Append(ledger.NewMedicalRecord(subjectUserID, body, time.Now().UTC()))
	if err != nil {
		return ledger.Block{}, err
	}
	s.logger.LogEvent(audit.Event{
		Timestamp: time.Now().UTC(),
		EventType: "add_record",
		EntityID:  subjectUserID,
		Result:    "success",
		Metadata:  map[string]string{"blockId": blk.SequenceID},
	})
	return blk, nil
}

// RecordsFor returns the subject's medical records in insertion order,
// oldest first. Callers wanting newest-first sort explicitly.
func (s *Service) RecordsFor(subjectUserID string) []RecordView {
	blocks := s.chain.Where(func(b ledger.Block) bool {
		return b.Payload.Kind() == ledger.KindMedicalRecord && b.Payload.SubjectUserID() == subjectUserID
	})
	views := make([]RecordView, 0, len(blocks))
	for _, blk := range blocks {
		data, _ := blk.Payload["data"].(map[string]interface{})
		views = append(views, RecordView{
			ID:        blk.SequenceID,
			Timestamp: blk.Timestamp,
			Data:      data,
			Digest:    blk.Digest,
		})
	}
	return views
}

// ShareRecord appends a sharing grant for an existing record. Returns true
// iff the grant block was committed with a non-empty digest. No ownership
// check is performed: the grant is audit-only.
func (s *Service) ShareRecord(recordID, granteeID string) (bool, error) {
	if err := s.requireRecord(recordID); err != nil {
		return false, err
	}
	blk, err := s.chain.Append(ledger.NewRecordSharingGrant(recordID, granteeID, time.Now().UTC()))
	if err != nil {
		return false, err
	}
	s.logger.LogEvent(audit.Event{
		Timestamp: time.Now().UTC(),
		EventType: "share_record",
		EntityID:  recordID,
		Result:    "success",
		Metadata:  map[string]string{"granteeId": granteeID},
	})
	return blk.Digest != "", nil
}

// AttachFile appends file metadata to an existing record. The file body is
// stored elsewhere; only its metadata reaches the chain.
func (s *Service) AttachFile(recordID string, meta ledger.FileMetadata) (bool, error) {
	if err := s.requireRecord(recordID); err != nil {
		return false, err
	}
	if meta.UploadDate.IsZero() {
		meta.UploadDate = time.Now().UTC()
	}
	blk, err := s.chain.Append(ledger.NewFileAttachment(recordID, meta))
	if err != nil {
		return false, err
	}
	return blk.Digest != "", nil
}

func (s *Service) requireRecord(recordID string) error {
	blk, ok := s.chain.Get(recordID)
	if !ok || blk.Payload.Kind() != ledger.KindMedicalRecord {
		s.logger.LogEvent(audit.Event{
			Timestamp: time.Now().UTC(),
			EventType: "share_record",
			EntityID:  recordID,
			Result:    "failure",
			Reason:    "record not found",
		})
		return &RecordNotFoundError{RecordID: recordID}
	}
	return nil
}

// VerifyIntegrity walks the whole chain; true means proven intact.
func (s *Service) VerifyIntegrity() bool {
	return s.chain.Verify()
}
