// Package ehealthwave is the tamper-evident ledger core behind the
// eHealthWave application: an append-only hash chain of audit blocks with a
// credential registry, a medical record service and a chain verifier
// layered on top. It is an embedded library called directly by the
// surrounding application; there is no server or CLI surface.
package ehealthwave

import (
	"fmt"

	"ehealthwave/core/archive"
	"ehealthwave/core/audit"
	"ehealthwave/core/config"
	"ehealthwave/core/digest"
	"ehealthwave/core/ehr"
	"ehealthwave/core/identity"
	"ehealthwave/core/ledger"
	"ehealthwave/core/records"
)

// Core wires the ledger and the services over it. Construct one per
// process (or per test); there is no package-level singleton.
type Core struct {
	chain   *ledger.Ledger
	archive *archive.Archive

	Identity  *identity.Registry
	Records   *records.Service
	Documents *records.DocumentStore
	EHR       *ehr.Service
}

// New builds a Core from environment configuration.
func New() (*Core, error) {
	return NewWithConfig(config.Load())
}

// NewWithConfig builds a Core from explicit configuration.
func NewWithConfig(cfg config.Config) (*Core, error) {
	hasher, err := digest.ForAlgorithm(cfg.DigestAlgo)
	if err != nil {
		return nil, err
	}

	var logger audit.Logger
	if cfg.AuditLogPath != "" {
		logger = audit.NewFileLogger(cfg.AuditLogPath)
	} else {
		logger = audit.NewStdoutLogger()
	}

	var opts []ledger.Option
	var arch *archive.Archive
	if cfg.ArchivePath != "" {
		arch, err = archive.NewArchive(cfg.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("could not open block archive: %w", err)
		}
		opts = append(opts, ledger.WithArchiver(arch))
	}

	var chain *ledger.Ledger
	if cfg.GenesisMessage != "" {
		chain, err = ledger.NewWithGenesisMessage(hasher, cfg.GenesisMessage, opts...)
	} else {
		chain, err = ledger.New(hasher, opts...)
	}
	if err != nil {
		if arch != nil {
			arch.Close()
		}
		return nil, err
	}

	recordSvc := records.NewService(chain, logger)
	return &Core{
		chain:     chain,
		archive:   arch,
		Identity:  identity.NewRegistry(chain, logger),
		Records:   recordSvc,
		Documents: records.NewDocumentStore(chain, logger),
		EHR:       ehr.NewService(recordSvc),
	}, nil
}

// Register creates a new account and returns its opaque user id.
func (c *Core) Register(externalID, secret string) (string, error) {
	return c.Identity.Register(externalID, secret)
}

// Authenticate checks a login; false is a normal outcome, not an error.
func (c *Core) Authenticate(externalID, secret string) bool {
	return c.Identity.Authenticate(externalID, secret)
}

// AddRecord persists a medical record for the user and returns its block.
func (c *Core) AddRecord(userID string, body map[string]interface{}) (ledger.Block, error) {
	return c.Records.AddRecord(userID, body)
}

// RecordsFor returns the user's records in insertion order.
func (c *Core) RecordsFor(userID string) []records.RecordView {
	return c.Records.RecordsFor(userID)
}

// ShareRecord grants another party visibility of a record (audit-only).
func (c *Core) ShareRecord(recordID, granteeID string) (bool, error) {
	return c.Records.ShareRecord(recordID, granteeID)
}

// Verify walks the full chain; true means proven intact.
func (c *Core) Verify() bool {
	return c.chain.Verify()
}

// VerifyDetail reports the first corrupt block's index on failure.
func (c *Core) VerifyDetail() (int, error) {
	return c.chain.VerifyDetail()
}

// Ledger exposes the underlying chain for read-only inspection.
func (c *Core) Ledger() *ledger.Ledger {
	return c.chain
}

// Close releases the block archive, if one is configured.
func (c *Core) Close() error {
	if c.archive != nil {
		return c.archive.Close()
	}
	return nil
}
