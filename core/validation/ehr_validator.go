package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/ehr_record_schema_v1.json
var ehrRecordSchemaV1 string

func loadSchema() (gojsonschema.JSONLoader, error) {
	if path := os.Getenv("EHW_EHR_SCHEMA_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read schema override: %w", err)
		}
		return gojsonschema.NewBytesLoader(raw), nil
	}
	return gojsonschema.NewStringLoader(ehrRecordSchemaV1), nil
}

// ValidateEHRPayload validates a raw JSON submission against the schema and
// additional logic.
func ValidateEHRPayload(payload []byte) error {
	var rec map[string]interface{}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	schemaLoader, err := loadSchema()
	if err != nil {
		return err
	}
	documentLoader := gojsonschema.NewBytesLoader(payload)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errStr := ""
		for _, e := range result.Errors() {
			errStr += e.String() + "; "
		}
		AuditValidationError("schema_check", errStr)
		return fmt.Errorf("payload failed schema validation: %s", errStr)
	}

	if recordType, ok := rec["recordType"].(string); ok && !IsValidRecordType(recordType) {
		AuditValidationError("record_type_check", "recordType not allowed: "+recordType)
		return fmt.Errorf("recordType not allowed: %s", recordType)
	}

	date, _ := rec["date"].(string)
	if err := EnforceTimestampFormat(date); err != nil {
		AuditValidationError("timestamp_check", err.Error())
		return err
	}

	return nil
}

// ValidateEHRRecord validates an EHR submission map using the payload
// validator.
func ValidateEHRRecord(record map[string]interface{}) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal record to JSON: %w", err)
	}
	return ValidateEHRPayload(payload)
}

// IsValidRecordType checks if the recordType is allowed
func IsValidRecordType(recordType string) bool {
	switch recordType {
	case "Prescription", "Lab Report", "Diagnosis", "Vaccination", "Surgery", "Other":
		return true
	default:
		return false
	}
}

// EnforceTimestampFormat checks if date is RFC3339
func EnforceTimestampFormat(date string) error {
	if date == "" {
		return fmt.Errorf("date is empty")
	}
	if _, err := time.Parse(time.RFC3339, date); err != nil {
		return fmt.Errorf("date must be RFC3339: %w", err)
	}
	return nil
}
