package store

import (
	"sync"
	"time"

	"github.com/lotas/lernbruecke/internal/types"
)

// Memory is an in-memory Session and History used by tests and by
// components that want a throwaway store.
type Memory struct {
	mu     sync.Mutex
	user   *types.User
	cookie *string
	url    *string
	orgID  *string
	visits []types.Visit
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) User() (types.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return types.User{}, false
	}
	return *m.user, true
}

func (m *Memory) SaveUser(u types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &u
}

func (m *Memory) Cookie() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cookie == nil {
		return "", false
	}
	return *m.cookie, true
}

func (m *Memory) SaveCookie(c string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookie = &c
}

func (m *Memory) LastURL() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.url == nil {
		return "", false
	}
	return *m.url, true
}

func (m *Memory) SaveLastURL(u string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.url = &u
}

func (m *Memory) OrganizationID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orgID == nil {
		return "", false
	}
	return *m.orgID, true
}

func (m *Memory) SaveOrganizationID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgID = &id
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.cookie = nil
	m.url = nil
	m.orgID = nil
}

func (m *Memory) RecordVisit(url string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = append(m.visits, types.Visit{URL: url, VisitedAt: at})
}

func (m *Memory) RecentVisits(n int) []types.Visit {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Visit
	for i := len(m.visits) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.visits[i])
	}
	return out
}
