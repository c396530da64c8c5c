// Package session bridges identity-provider notifications into application
// state and gates the admin capability.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buyzo/internal/docstore"
	"buyzo/internal/domain"
	"buyzo/internal/identity"
	"buyzo/internal/store"

	"go.uber.org/zap"
)

const usersCollection = "users"

// Manager owns the imperative credential operations and the identity-change
// subscription. Admin status is derived from an injected set of bootstrap
// addresses plus the persisted user record.
type Manager struct {
	provider identity.Provider
	docs     docstore.Store
	stores   *store.Registry
	admins   map[string]struct{}
	logger   *zap.Logger
}

// NewManager creates a session Manager. adminEmails is the set of addresses
// that are always granted the admin role.
func NewManager(
	provider identity.Provider,
	docs docstore.Store,
	stores *store.Registry,
	adminEmails []string,
	logger *zap.Logger,
) *Manager {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}

	return &Manager{
		provider: provider,
		docs:     docs,
		stores:   stores,
		admins:   admins,
		logger:   logger,
	}
}

// Signup creates a credential, then persists the user record. If the record
// write fails the credential is left in place; there is no rollback, and the
// caller sees the error rather than a silent success.
func (m *Manager) Signup(ctx context.Context, email, password, name string) (*identity.Identity, string, error) {
	ident, token, err := m.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	role := domain.RoleUser
	if m.isBootstrapAdmin(ident.Email) {
		role = domain.RoleAdmin
	}

	record, err := docstore.Encode(domain.UserRecord{
		Name:      name,
		Email:     ident.Email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, "", err
	}

	if err := m.docs.Set(ctx, usersCollection, ident.UID, record, false); err != nil {
		return nil, "", fmt.Errorf("failed to persist user record: %w", err)
	}

	userStore := m.stores.ForUser(ident.UID)
	userStore.Dispatch(store.SetIdentity{Identity: ident})
	userStore.Dispatch(store.SetRole{Role: role})

	m.logger.Info("User signed up",
		zap.String("uid", ident.UID),
		zap.String("role", string(role)),
	)

	return ident, token, nil
}

// Login authenticates a credential. A bootstrap-admin address force-writes
// role admin onto the user record so the admin account heals itself even if
// the record was created without the role.
func (m *Manager) Login(ctx context.Context, email, password string) (*identity.Identity, string, error) {
	ident, token, err := m.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	var role domain.Role
	if m.isBootstrapAdmin(ident.Email) {
		if err := m.docs.Set(ctx, usersCollection, ident.UID, docstore.Record{"role": string(domain.RoleAdmin)}, true); err != nil {
			m.logger.Warn("Failed to self-heal admin role", zap.String("uid", ident.UID), zap.Error(err))
		}
		role = domain.RoleAdmin
	} else {
		role = m.ResolveRole(ctx, ident)
	}

	userStore := m.stores.ForUser(ident.UID)
	userStore.Dispatch(store.SetIdentity{Identity: ident})
	userStore.Dispatch(store.SetRole{Role: role})

	m.logger.Info("User logged in",
		zap.String("uid", ident.UID),
		zap.String("role", string(role)),
	)

	return ident, token, nil
}

// Logout clears the local role first, then signs out of the provider, then
// tears down session state. The local flag drops before the provider call
// completes.
func (m *Manager) Logout(ctx context.Context, uid string) error {
	userStore := m.stores.ForUser(uid)
	userStore.Dispatch(store.SetRole{Role: domain.RoleUser})

	if err := m.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	userStore.Dispatch(store.ClearSession{})
	m.stores.Drop(uid)

	m.logger.Info("User logged out", zap.String("uid", uid))
	return nil
}

// Profile reads the persisted user record
func (m *Manager) Profile(ctx context.Context, uid string) (*domain.UserRecord, error) {
	rec, err := m.docs.Get(ctx, usersCollection, uid)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserRecord{}
	if err := docstore.Decode(rec, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// UpdateProfile applies a partial update to the user record
func (m *Manager) UpdateProfile(ctx context.Context, uid string, partial docstore.Record) error {
	update := docstore.Record{}
	for k, v := range partial {
		update[k] = v
	}
	update["updatedAt"] = time.Now().UTC()

	if err := m.docs.Update(ctx, usersCollection, uid, update); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// ResolveRole derives the role for an identity. Checked in order: the
// bootstrap-admin set (with a best-effort write-back when the record does not
// already say admin), then the persisted record's role field. A read failure
// falls back to the bootstrap rule alone.
func (m *Manager) ResolveRole(ctx context.Context, ident *identity.Identity) domain.Role {
	if ident == nil {
		return domain.RoleUser
	}

	if m.isBootstrapAdmin(ident.Email) {
		rec, err := m.docs.Get(ctx, usersCollection, ident.UID)
		if err != nil || rec["role"] != string(domain.RoleAdmin) {
			if err := m.docs.Set(ctx, usersCollection, ident.UID, docstore.Record{"role": string(domain.RoleAdmin)}, true); err != nil {
				m.logger.Warn("Failed to self-heal admin role", zap.String("uid", ident.UID), zap.Error(err))
			}
		}
		return domain.RoleAdmin
	}

	rec, err := m.docs.Get(ctx, usersCollection, ident.UID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			m.logger.Warn("Failed to read user record for role check",
				zap.String("uid", ident.UID),
				zap.Error(err),
			)
		}
		return domain.RoleUser
	}

	if rec["role"] == string(domain.RoleAdmin) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// Run consumes the provider's identity-change feed, re-deriving the role and
// publishing identity, role, and loading=false on every event. It returns
// when ctx is done; the subscription is released on exit.
func (m *Manager) Run(ctx context.Context) {
	events, unsubscribe := m.provider.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ident, ok := <-events:
			if !ok {
				return
			}
			if ident == nil {
				// A sign-out carries no identity to attribute; the
				// imperative Logout path already cleared that session.
				continue
			}

			role := m.ResolveRole(ctx, ident)
			userStore := m.stores.ForUser(ident.UID)
			userStore.Dispatch(store.SetIdentity{Identity: ident})
			userStore.Dispatch(store.SetRole{Role: role})

			m.logger.Debug("Identity change applied",
				zap.String("uid", ident.UID),
				zap.String("role", string(role)),
			)
		}
	}
}

func (m *Manager) isBootstrapAdmin(email string) bool {
	_, ok := m.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
