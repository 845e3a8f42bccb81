package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dentkao/dentkao/internal/util"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/store"
)

// secretStateKey stores the generated token-signing secret.
const secretStateKey = "auth_secret"

// Owner is the persisted owner credential record.
type Owner struct {
	PasswordHash string `json:"passwordHash"`
	UpdatedTs    int64  `json:"updatedTs"`
}

// Manager owns the server's authentication state: the optional owner
// password and the token-signing secret.
type Manager struct {
	store  *store.Store
	secret []byte
}

// NewManager creates a Manager signing tokens with the given secret.
func NewManager(st *store.Store, secret string) *Manager {
	return &Manager{store: st, secret: []byte(secret)}
}

// LoadOrCreateSecret returns the persisted signing secret, generating and
// storing one on first start so access tokens survive restarts.
func LoadOrCreateSecret(ctx context.Context, st *store.Store) (string, error) {
	var secret string
	found, err := st.GetStateJSON(ctx, secretStateKey, &secret)
	if err != nil {
		return "", err
	}
	if found && secret != "" {
		return secret, nil
	}
	secret = util.GenUUID()
	if _, err := st.PutStateJSON(ctx, secretStateKey, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Enabled reports whether an owner password has been set.
func (m *Manager) Enabled(ctx context.Context) bool {
	owner, err := m.loadOwner(ctx)
	return err == nil && owner != nil && owner.PasswordHash != ""
}

// SetPassword sets or replaces the owner password. An empty password is
// rejected; use RemovePassword to open the server up again.
func (m *Manager) SetPassword(ctx context.Context, password string) error {
	if password == "" {
		return apierrors.InvalidArgument("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apierrors.Internal("failed to hash password", err)
	}
	owner := &Owner{
		PasswordHash: string(hash),
		UpdatedTs:    time.Now().Unix(),
	}
	if _, err := m.store.PutStateJSON(ctx, store.StateKeyOwner, owner); err != nil {
		return apierrors.Internal("failed to persist owner credentials", err)
	}
	return nil
}

// RemovePassword clears the owner password, disabling authentication.
func (m *Manager) RemovePassword(ctx context.Context) error {
	if _, err := m.store.PutStateJSON(ctx, store.StateKeyOwner, &Owner{UpdatedTs: time.Now().Unix()}); err != nil {
		return apierrors.Internal("failed to persist owner credentials", err)
	}
	return nil
}

// SignIn checks the password and issues an access token.
func (m *Manager) SignIn(ctx context.Context, password string) (string, error) {
	owner, err := m.loadOwner(ctx)
	if err != nil {
		return "", err
	}
	if owner == nil || owner.PasswordHash == "" {
		return "", apierrors.FailedPrecondition("no owner password has been set")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password)); err != nil {
		return "", apierrors.Unauthorized("incorrect password")
	}
	token, err := GenerateAccessToken(time.Now().Add(AccessTokenDuration), m.secret)
	if err != nil {
		return "", apierrors.Internal("failed to generate access token", err)
	}
	return token, nil
}

// Authenticate validates a bearer token.
func (m *Manager) Authenticate(tokenString string) error {
	if tokenString == "" {
		return apierrors.Unauthorized("access token required")
	}
	if _, err := ValidateAccessToken(tokenString, m.secret); err != nil {
		return apierrors.Unauthorized(err.Error())
	}
	return nil
}

func (m *Manager) loadOwner(ctx context.Context) (*Owner, error) {
	owner := &Owner{}
	found, err := m.store.GetStateJSON(ctx, store.StateKeyOwner, owner)
	if err != nil {
		return nil, apierrors.Internal("failed to load owner credentials", err)
	}
	if !found {
		return nil, nil
	}
	return owner, nil
}
