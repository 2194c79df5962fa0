package ehealthwave

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ehealthwave/core/config"
	"ehealthwave/core/identity"
	"ehealthwave/core/records"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	core, err := NewWithConfig(config.Config{
		DigestAlgo:   "sha256",
		AuditLogPath: filepath.Join(t.TempDir(), "audit.log"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { core.Close() })
	return core
}

// The full end-to-end path a UI would drive: register, write a record,
// read it back, prove the chain intact.
func TestRegisterAddRecordAndVerify(t *testing.T) {
	core := newTestCore(t)

	userID, err := core.Register("000000000001", "s3cr3t")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	_, err = core.AddRecord(userID, map[string]interface{}{"title": "CBC"})
	require.NoError(t, err)

	got := core.RecordsFor(userID)
	require.Len(t, got, 1)
	require.Equal(t, "CBC", got[0].Data["title"])

	require.True(t, core.Verify())
}

func TestDuplicateRegistration(t *testing.T) {
	core := newTestCore(t)

	_, err := core.Register("123456789012", "secretA")
	require.NoError(t, err)

	_, err = core.Register("123456789012", "secretB")
	var dup *identity.DuplicateIdentityError
	require.True(t, errors.As(err, &dup))
}

func TestAuthenticateThroughFacade(t *testing.T) {
	core := newTestCore(t)

	_, err := core.Register("A", "pw1")
	require.NoError(t, err)

	require.True(t, core.Authenticate("A", "pw1"))
	require.False(t, core.Authenticate("A", "wrong"))
	require.False(t, core.Authenticate("B", "pw1"))
}

func TestShareRecordThroughFacade(t *testing.T) {
	core := newTestCore(t)

	userID, err := core.Register("A", "pw1")
	require.NoError(t, err)
	blk, err := core.AddRecord(userID, map[string]interface{}{"title": "MRI"})
	require.NoError(t, err)

	ok, err := core.ShareRecord(blk.SequenceID, "doctor_1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = core.ShareRecord("block_404", "doctor_1")
	require.False(t, ok)
	var notFound *records.RecordNotFoundError
	require.True(t, errors.As(err, &notFound))

	require.True(t, core.Verify())
}

func TestVerifyDetailSurfacesPosition(t *testing.T) {
	core := newTestCore(t)
	userID, err := core.Register("A", "pw1")
	require.NoError(t, err)
	_, err = core.AddRecord(userID, map[string]interface{}{"title": "CBC"})
	require.NoError(t, err)

	idx, err := core.VerifyDetail()
	require.NoError(t, err)
	require.Equal(t, -1, idx)
}

func TestLegacyDigestConfiguration(t *testing.T) {
	core, err := NewWithConfig(config.Config{
		DigestAlgo:   "legacy32",
		AuditLogPath: filepath.Join(t.TempDir(), "audit.log"),
	})
	require.NoError(t, err)
	defer core.Close()

	userID, err := core.Register("000000000001", "s3cr3t")
	require.NoError(t, err)
	blk, err := core.AddRecord(userID, map[string]interface{}{"title": "CBC"})
	require.NoError(t, err)
	require.Len(t, blk.Digest, 8)
	require.True(t, core.Verify())
}

func TestUnknownDigestAlgorithm(t *testing.T) {
	_, err := NewWithConfig(config.Config{DigestAlgo: "md5"})
	require.Error(t, err)
}

func TestArchiveWiring(t *testing.T) {
	dir := t.TempDir()
	core, err := NewWithConfig(config.Config{
		DigestAlgo:   "sha256",
		ArchivePath:  filepath.Join(dir, "leveldb"),
		AuditLogPath: filepath.Join(dir, "audit.log"),
	})
	require.NoError(t, err)
	defer core.Close()

	userID, err := core.Register("A", "pw1")
	require.NoError(t, err)
	_, err = core.AddRecord(userID, map[string]interface{}{"title": "CBC"})
	require.NoError(t, err)
	require.True(t, core.Verify())

	ids, err := core.archive.ListSequenceIDs()
	require.NoError(t, err)
	require.Equal(t, core.Ledger().Height(), len(ids))
}

func TestGenesisMessageConfiguration(t *testing.T) {
	core, err := NewWithConfig(config.Config{
		DigestAlgo:     "sha256",
		GenesisMessage: "Genesis Block for eHealthWave",
		AuditLogPath:   filepath.Join(t.TempDir(), "audit.log"),
	})
	require.NoError(t, err)
	defer core.Close()

	msg, _ := core.Ledger().Genesis().Payload["message"].(string)
	require.Equal(t, "Genesis Block for eHealthWave", msg)
}
