package identity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ehealthwave/core/audit"
	"ehealthwave/core/ledger"
)

// Credential maps a natural external identifier (e.g., a national ID number)
// to a digested secret and an opaque user id. Credentials are NOT stored as
// blocks: authentication must be queryable by key without scanning the
// chain. The chain only carries the registration audit event.
type Credential struct {
	ExternalID   string `json:"externalId"`
	SecretDigest string `json:"secretDigest"`
	UserID       string `json:"userId"`
}

// DuplicateIdentityError is returned by Register when the external id is
// already taken. Recoverable by the caller (prompt the user to sign in).
type DuplicateIdentityError struct {
	ExternalID string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("identity: external id %q is already registered", e.ExternalID)
}

// Registry is the credential store. Format constraints on the external id
// (fixed digit length etc.) are the caller's job; the registry only
// enforces non-emptiness and uniqueness.
type Registry struct {
	mu           sync.RWMutex
	byExternalID map[string]Credential

	chain  *ledger.Ledger
	logger audit.Logger
}

func NewRegistry(chain *ledger.Ledger, logger audit.Logger) *Registry {
	if logger == nil {
		logger = audit.NopLogger{}
	}
	return &Registry{
		byExternalID: make(map[string]Credential),
		chain:        chain,
		logger:       logger,
	}
}

// Register creates a credential for the external id and appends a
// registration event to the ledger for the audit trail. Returns the fresh
// opaque user id.
func (r *Registry) Register(externalID, secret string) (string, error) {
	if externalID == "" {
		return "", fmt.Errorf("identity: external id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byExternalID[externalID]; exists {
		r.logger.LogEvent(audit.Event{
			Timestamp: time.Now().UTC(),
			EventType: "register",
			EntityID:  externalID,
			Result:    "failure",
			Reason:    "duplicate external id",
		})
		return "", &DuplicateIdentityError{ExternalID: externalID}
	}

	secretDigest, err := r.chain.Hasher().Sum(secret)
	if err != nil {
		return "", fmt.Errorf("identity: could not digest secret: %w", err)
	}

	userID := "user_" + uuid.New().String()
	r.byExternalID[externalID] = Credential{
		ExternalID:   externalID,
		SecretDigest: secretDigest,
		UserID:       userID,
	}

	if _, err := r.chain.Append(ledger.NewUserRegistration(userID, externalID, time.Now().UTC())); err != nil {
		delete(r.byExternalID, externalID)
		return "", fmt.Errorf("identity: could not record registration: %w", err)
	}

	r.logger.LogEvent(audit.Event{
		Timestamp: time.Now().UTC(),
		EventType: "register",
		EntityID:  userID,
		Result:    "success",
	})
	return userID, nil
}

// Authenticate checks a secret against the stored digest. A false return is
// a normal outcome, never an error: absent identity and wrong secret are
// indistinguishable to the caller.
func (r *Registry) Authenticate(externalID, secret string) bool {
	r.mu.RLock()
	cred, ok := r.byExternalID[externalID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	sum, err := r.chain.Hasher().Sum(secret)
	if err != nil {
		return false
	}
	match := sum == cred.SecretDigest
	result := "failure"
	if match {
		result = "success"
	}
	r.logger.LogEvent(audit.Event{
		Timestamp: time.Now().UTC(),
		EventType: "authenticate",
		EntityID:  cred.UserID,
		Result:    result,
	})
	return match
}

// Lookup returns the user id registered for an external id, if any.
func (r *Registry) Lookup(externalID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.byExternalID[externalID]
	if !ok {
		return "", false
	}
	return cred.UserID, true
}
