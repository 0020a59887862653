package service

import (
	"sync"

	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// AccountRegistry tracks the accounts signed in on this kiosk backend. The
// first account added is the active one; removing it promotes the next.
type AccountRegistry struct {
	mu       sync.RWMutex
	accounts []domainauth.Account
	subs     map[int]chan struct{}
	nextSub  int
}

// NewAccountRegistry creates an empty registry.
func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{subs: make(map[int]chan struct{})}
}

// Add registers an account. Re-adding a known account refreshes its details
// without changing the order. It reports whether the account was new.
func (r *AccountRegistry) Add(acc domainauth.Account) bool {
	if acc.IsZero() {
		return false
	}
	r.mu.Lock()
	for i := range r.accounts {
		if r.accounts[i].ID == acc.ID {
			r.accounts[i] = acc
			r.mu.Unlock()
			return false
		}
	}
	r.accounts = append(r.accounts, acc)
	r.mu.Unlock()
	r.notify()
	return true
}

// Remove forgets an account. It reports whether the account was known.
func (r *AccountRegistry) Remove(accountID string) bool {
	r.mu.Lock()
	idx := -1
	for i := range r.accounts {
		if r.accounts[i].ID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	r.accounts = append(r.accounts[:idx], r.accounts[idx+1:]...)
	r.mu.Unlock()
	r.notify()
	return true
}

// Active returns the account tokens are acquired for.
func (r *AccountRegistry) Active() (domainauth.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.accounts) == 0 {
		return domainauth.Account{}, false
	}
	return r.accounts[0], true
}

// Get returns a registered account by id.
func (r *AccountRegistry) Get(accountID string) (domainauth.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.ID == accountID {
			return acc, true
		}
	}
	return domainauth.Account{}, false
}

// List returns a copy of the registered accounts in activation order.
func (r *AccountRegistry) List() []domainauth.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainauth.Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Len returns the number of registered accounts.
func (r *AccountRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// Subscribe returns a channel that receives a signal after every membership
// change. Signals coalesce; readers should re-check the registry state.
// The returned func unsubscribes.
func (r *AccountRegistry) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

func (r *AccountRegistry) notify() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
