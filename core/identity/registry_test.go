package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ehealthwave/core/audit"
	"ehealthwave/core/digest"
	"ehealthwave/core/ledger"
)

func newTestRegistry(t *testing.T) (*Registry, *ledger.Ledger) {
	t.Helper()
	chain, err := ledger.New(digest.SHA256{})
	require.NoError(t, err)
	return NewRegistry(chain, audit.NopLogger{}), chain
}

func TestRegisterReturnsOpaqueUserID(t *testing.T) {
	reg, chain := newTestRegistry(t)

	userID, err := reg.Register("123456789012", "pw1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(userID, "user_"))

	// Registration leaves an audit block on the chain.
	require.Equal(t, 2, chain.Height())
	blocks := chain.GetAll()
	last := blocks[len(blocks)-1]
	require.Equal(t, ledger.KindUserRegistration, last.Payload.Kind())
	require.Equal(t, userID, last.Payload.SubjectUserID())
}

func TestRegisterDuplicateExternalID(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Register("123456789012", "secretA")
	require.NoError(t, err)

	_, err = reg.Register("123456789012", "secretB")
	require.Error(t, err)
	var dup *DuplicateIdentityError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "123456789012", dup.ExternalID)
}

func TestRegisterEmptyExternalID(t *testing.T) {
	reg, chain := newTestRegistry(t)
	_, err := reg.Register("", "pw")
	require.Error(t, err)
	require.Equal(t, 1, chain.Height(), "failed registration must not touch the chain")
}

func TestAuthenticate(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Register("A", "pw1")
	require.NoError(t, err)

	require.True(t, reg.Authenticate("A", "pw1"))
	require.False(t, reg.Authenticate("A", "wrong"))
	require.False(t, reg.Authenticate("B", "pw1"))
}

func TestAuthenticateNeverStoresPlaintext(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.Register("A", "pw1")
	require.NoError(t, err)

	cred := reg.byExternalID["A"]
	require.NotEqual(t, "pw1", cred.SecretDigest)
	require.NotEmpty(t, cred.SecretDigest)
}

func TestLookup(t *testing.T) {
	reg, _ := newTestRegistry(t)
	userID, err := reg.Register("A", "pw1")
	require.NoError(t, err)

	got, ok := reg.Lookup("A")
	require.True(t, ok)
	require.Equal(t, userID, got)

	_, ok = reg.Lookup("B")
	require.False(t, ok)
}
