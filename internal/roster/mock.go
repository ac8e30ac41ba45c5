package roster

import (
	"sync"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetPlayerFunc     func(id string) (*Player, error)
	GetPlayersFunc    func(ids []string) ([]Player, error)
	AllPlayersFunc    func() ([]Player, error)
	UpsertPlayersFunc func(players []Player) error
	UpdatePlayerFunc  func(id string, update PlayerUpdate) error
	IsKnownPlayerFunc func(id string) bool
	ClearFunc         func()

	// Call records
	GetPlayersCalls    [][]string
	UpsertPlayersCalls [][]Player
	UpdatePlayerCalls  []struct {
		ID     string
		Update PlayerUpdate
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayersCalls = nil
	m.UpsertPlayersCalls = nil
	m.UpdatePlayerCalls = nil
}

func (m *MockStore) GetPlayer(id string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(ids []string) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayersCalls = append(m.GetPlayersCalls, ids)
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(ids)
	}
	return nil, nil
}

func (m *MockStore) AllPlayers() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AllPlayersFunc != nil {
		return m.AllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) UpsertPlayers(players []Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) UpdatePlayer(id string, update PlayerUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatePlayerCalls = append(m.UpdatePlayerCalls, struct {
		ID     string
		Update PlayerUpdate
	}{id, update})
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(id, update)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(id)
	}
	return false
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
