package config

import (
	"os"

	"github.com/joho/godotenv"
)

// All configurable values are loaded from environment variables, with a
// .env file picked up for local/dev runs.

// Config carries the ledger core's runtime settings.
type Config struct {
	DigestAlgo     string // EHW_DIGEST_ALGO: "sha256" (default) or "legacy32"
	GenesisMessage string // EHW_GENESIS_MESSAGE: genesis payload message
	ArchivePath    string // EHW_ARCHIVE_PATH: leveldb mirror path, empty disables
	AuditLogPath   string // EHW_AUDIT_LOG: audit event log file, empty logs to stdout
}

// Load reads configuration from the environment. Missing variables fall
// back to defaults; a missing .env file is not an error.
func Load() Config {
	godotenv.Load(".env")
	return Config{
		DigestAlgo:     getenv("EHW_DIGEST_ALGO", "sha256"),
		GenesisMessage: os.Getenv("EHW_GENESIS_MESSAGE"),
		ArchivePath:    os.Getenv("EHW_ARCHIVE_PATH"),
		AuditLogPath:   os.Getenv("EHW_AUDIT_LOG"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
