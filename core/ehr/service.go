package ehr

import (
	"fmt"
	"time"

	"ehealthwave/core/ledger"
	"ehealthwave/core/records"
	"ehealthwave/core/validation"
)

// Record types accepted for EHR submissions.
const (
	TypePrescription = "Prescription"
	TypeLabReport    = "Lab Report"
	TypeDiagnosis    = "Diagnosis"
	TypeVaccination  = "Vaccination"
	TypeSurgery      = "Surgery"
	TypeOther        = "Other"
)

// Record is the typed view of an electronic health record backed by a
// ledger block.
type Record struct {
	ID          string                `json:"id"`
	PatientID   string                `json:"patientId"`
	DoctorID    string                `json:"doctorId"`
	HospitalID  string                `json:"hospitalId,omitempty"`
	Date        time.Time             `json:"date"`
	Type        string                `json:"type"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Attachments []ledger.FileMetadata `json:"attachments,omitempty"`
	Verified    bool                  `json:"verified"`
	ChainDigest string                `json:"chainDigest"`
}

// Submission is the input for uploading a new EHR record.
type Submission struct {
	PatientID   string
	DoctorID    string
	HospitalID  string
	Date        time.Time
	Type        string
	Title       string
	Description string
	Attachments []ledger.FileMetadata
}

// Service layers typed, schema-validated EHR records on top of the record
// service. The record service itself stays shape-agnostic; this is where
// shape is enforced.
type Service struct {
	records *records.Service
}

func NewService(rec *records.Service) *Service {
	return &Service{records: rec}
}

// Upload validates the submission against the EHR schema and writes it to
// the ledger through the record service.
func (s *Service) Upload(sub Submission) (Record, error) {
	check := map[string]interface{}{
		"patientId":  sub.PatientID,
		"doctorId":   sub.DoctorID,
		"recordType": sub.Type,
		"title":      sub.Title,
		"date":       sub.Date.UTC().Format(time.RFC3339),
	}
	if sub.HospitalID != "" {
		check["hospitalId"] = sub.HospitalID
	}
	if sub.Description != "" {
		check["description"] = sub.Description
	}
	if len(sub.Attachments) > 0 {
		check["attachments"] = sub.Attachments
	}
	if err := validation.ValidateEHRRecord(check); err != nil {
		return Record{}, fmt.Errorf("ehr: submission rejected: %w", err)
	}

	body := map[string]interface{}{
		"doctorId":    sub.DoctorID,
		"recordType":  sub.Type,
		"title":       sub.Title,
		"description": sub.Description,
		"date":        sub.Date.UTC(),
	}
	if sub.HospitalID != "" {
		body["hospitalId"] = sub.HospitalID
	}
	if len(sub.Attachments) > 0 {
		body["attachments"] = sub.Attachments
	}

	blk, err := s.records.AddRecord(sub.PatientID, body)
	if err != nil {
		return Record{}, fmt.Errorf("ehr: could not store record: %w", err)
	}
	return Record{
		ID:          "ehr_" + blk.SequenceID,
		PatientID:   sub.PatientID,
		DoctorID:    sub.DoctorID,
		HospitalID:  sub.HospitalID,
		Date:        sub.Date,
		Type:        sub.Type,
		Title:       sub.Title,
		Description: sub.Description,
		Attachments: sub.Attachments,
		Verified:    true,
		ChainDigest: blk.Digest,
	}, nil
}

// PatientRecords projects the patient's ledger views into typed records.
// Missing fields fall back to the defaults callers expect.
func (s *Service) PatientRecords(patientID string) []Record {
	views := s.records.RecordsFor(patientID)
	out := make([]Record, 0, len(views))
	for _, v := range views {
		rec := Record{
			ID:          "ehr_" + v.ID,
			PatientID:   patientID,
			DoctorID:    "unknown",
			Date:        v.Timestamp,
			Type:        TypeOther,
			Title:       "Untitled Record",
			Verified:    true,
			ChainDigest: v.Digest,
		}
		if v.Data == nil {
			out = append(out, rec)
			continue
		}
		if doctorID, ok := v.Data["doctorId"].(string); ok && doctorID != "" {
			rec.DoctorID = doctorID
		}
		if hospitalID, ok := v.Data["hospitalId"].(string); ok {
			rec.HospitalID = hospitalID
		}
		if recordType, ok := v.Data["recordType"].(string); ok && recordType != "" {
			rec.Type = recordType
		}
		if title, ok := v.Data["title"].(string); ok && title != "" {
			rec.Title = title
		}
		if description, ok := v.Data["description"].(string); ok {
			rec.Description = description
		}
		if date, ok := v.Data["date"].(time.Time); ok {
			rec.Date = date
		}
		if attachments, ok := v.Data["attachments"].([]ledger.FileMetadata); ok {
			rec.Attachments = attachments
		}
		out = append(out, rec)
	}
	return out
}

// VerifyIntegrity proves the backing chain intact.
func (s *Service) VerifyIntegrity() bool {
	return s.records.VerifyIntegrity()
}
