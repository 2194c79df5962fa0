package validation

import (
	"io"
	"log"
	"os"
	"sync"
)

var auditOnce sync.Once
var auditLogger *log.Logger

func getAuditLogger() *log.Logger {
	auditOnce.Do(func() {
		path := os.Getenv("EHW_VALIDATION_AUDIT_LOG")
		if path == "" {
			auditLogger = log.New(io.Discard, "", 0)
			return
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Failed to open validation audit log: %v", err)
			auditLogger = log.New(os.Stderr, "[AUDIT] ", log.LstdFlags|log.LUTC)
			return
		}
		auditLogger = log.New(f, "[AUDIT] ", log.LstdFlags|log.LUTC)
	})
	return auditLogger
}

// AuditValidationError logs validation errors (without PHI) to a file
func AuditValidationError(context, errMsg string) {
	logger := getAuditLogger()
	logger.Printf("%s | %s", context, errMsg)
}
