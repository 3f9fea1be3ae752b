// Package session holds the logged-in user and persists it across runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

// StorageKey is the storage entry holding the serialized session user.
const StorageKey = "user"

// Generation identifies one session. It changes on every login and logout.
type Generation uint64

// Manager owns the current session. Every change starts a new Generation whose
// context is cancelled by the next change, aborting requests of the previous session.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	logger  core.Logger

	usr    *user.User
	gen    Generation
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(storage Storage, logger core.Logger) *Manager {
	m := &Manager{storage: storage, logger: logger}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// change must be called with the lock held.
func (m *Manager) change(usr *user.User) Generation {
	m.cancel()
	m.usr = usr
	m.gen++
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m.gen
}

// Restore adopts the stored user, if any. A record that cannot be decoded is discarded.
func (m *Manager) Restore() (user.User, bool, error) {
	raw, ok, err := m.storage.GetItem(StorageKey)
	if err != nil {
		return user.User{}, false, errors.Wrap(err, "reading session")
	}
	if !ok {
		return user.User{}, false, nil
	}

	var usr user.User
	if err = json.Unmarshal([]byte(raw), &usr); err != nil || usr.ID == 0 {
		m.logger.Warn("discarding unreadable session record", errors.Wrap(fmt.Errorf("%q: %v", raw, err), "decoding session"))
		if rmErr := m.storage.RemoveItem(StorageKey); rmErr != nil {
			return user.User{}, false, errors.Wrap(rmErr, "removing session")
		}
		return user.User{}, false, nil
	}

	m.mu.Lock()
	m.change(&usr)
	m.mu.Unlock()
	return usr, true, nil
}

// Login replaces the session with usr and persists it.
func (m *Manager) Login(usr user.User) (Generation, error) {
	data, err := json.Marshal(usr)
	if err != nil {
		return 0, errors.Wrap(err, "encoding session")
	}

	m.mu.Lock()
	gen := m.change(&usr)
	m.mu.Unlock()

	if err = m.storage.SetItem(StorageKey, string(data)); err != nil {
		return gen, errors.Wrap(err, "persisting session")
	}
	return gen, nil
}

// Logout clears the session and its storage entry.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.change(nil)
	m.mu.Unlock()

	return errors.Wrap(m.storage.RemoveItem(StorageKey), "removing session")
}

// Current returns the session user and its generation; ok is false when logged out.
func (m *Manager) Current() (usr user.User, gen Generation, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.usr == nil {
		return user.User{}, m.gen, false
	}
	return *m.usr, m.gen, true
}

// Context returns the context of the current generation.
func (m *Manager) Context() (context.Context, Generation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx, m.gen
}

// Ticket is a consistent view of the session, taken before issuing requests on its behalf.
type Ticket struct {
	User     user.User
	Gen      Generation
	Ctx      context.Context
	LoggedIn bool
}

func (m *Manager) Ticket() Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := Ticket{Gen: m.gen, Ctx: m.ctx}
	if m.usr != nil {
		t.User, t.LoggedIn = *m.usr, true
	}
	return t
}

// IsCurrent reports whether gen is still the active generation.
func (m *Manager) IsCurrent(gen Generation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen == gen
}
