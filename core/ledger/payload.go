package ledger

import (
	"time"
)

// Payload kind tags. The set is closed for the core services but any
// write-once event the surrounding application wants audited may define
// its own tag.
const (
	KindUserRegistration = "USER_REGISTRATION"
	KindMedicalRecord    = "MEDICAL_RECORD"
	KindRecordSharing    = "RECORD_SHARING"
	KindFileAttachment   = "FILE_ATTACHMENT"
	KindMedicalDocument  = "MEDICAL_DOCUMENT"
	KindDocumentSharing  = "DOCUMENT_SHARING"
)

// Payload is the caller-defined structured data carried by a block. It is a
// plain map so the digest canonicalization (sorted keys) applies uniformly
// to every variant.
type Payload map[string]interface{}

// Kind returns the payload's type tag, or "" for untagged payloads such as
// the genesis message.
func (p Payload) Kind() string {
	kind, _ := p["type"].(string)
	return kind
}

// SubjectUserID returns the user the payload is about, if it carries one.
func (p Payload) SubjectUserID() string {
	id, _ := p["userId"].(string)
	return id
}

// RecordID returns the referenced record id, if the payload carries one.
func (p Payload) RecordID() string {
	id, _ := p["recordId"].(string)
	return id
}

// FileMetadata describes an attached file. The file body itself is never
// stored on the chain, only its metadata.
type FileMetadata struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"uploadDate"`
}

// NewUserRegistration builds the audit payload appended when a credential
// is registered.
func NewUserRegistration(userID, externalID string, at time.Time) Payload {
	return Payload{
		"type":       KindUserRegistration,
		"userId":     userID,
		"externalId": externalID,
		"timestamp":  at,
	}
}

// NewMedicalRecord wraps an opaque record body for a subject user.
func NewMedicalRecord(subjectUserID string, body map[string]interface{}, at time.Time) Payload {
	return Payload{
		"type":      KindMedicalRecord,
		"userId":    subjectUserID,
		"data":      body,
		"timestamp": at,
	}
}

// NewRecordSharingGrant records that a record was made visible to a grantee.
func NewRecordSharingGrant(recordID, granteeID string, at time.Time) Payload {
	return Payload{
		"type":      KindRecordSharing,
		"recordId":  recordID,
		"granteeId": granteeID,
		"timestamp": at,
	}
}

// NewFileAttachment records file metadata attached to an existing record.
func NewFileAttachment(recordID string, meta FileMetadata) Payload {
	return Payload{
		"type":         KindFileAttachment,
		"recordId":     recordID,
		"fileMetadata": meta,
	}
}

// NewMedicalDocument records a document upload with its ownership context.
func NewMedicalDocument(documentID, patientID, doctorID string, meta FileMetadata, tags []string, at time.Time) Payload {
	return Payload{
		"type":       KindMedicalDocument,
		"documentId": documentID,
		"patientId":  patientID,
		"doctorId":   doctorID,
		"metadata":   meta,
		"tags":       tags,
		"timestamp":  at,
	}
}

// NewDocumentSharing records that a document was shared with another party.
func NewDocumentSharing(documentID, sharedWithID string, at time.Time) Payload {
	return Payload{
		"type":         KindDocumentSharing,
		"documentId":   documentID,
		"sharedWithId": sharedWithID,
		"timestamp":    at,
	}
}
