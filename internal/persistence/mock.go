package persistence

import "sync"

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	SaveFunc  func(key string, state []byte) error
	LoadFunc  func(key string) ([]byte, bool, error)
	ClearFunc func(key string) error

	// Call records
	SaveCalls []struct {
		Key   string
		State []byte
	}
	ClearCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = nil
	m.ClearCalls = nil
}

func (m *MockStore) Save(key string, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]byte, len(state))
	copy(saved, state)
	m.SaveCalls = append(m.SaveCalls, struct {
		Key   string
		State []byte
	}{key, saved})
	if m.SaveFunc != nil {
		return m.SaveFunc(key, state)
	}
	return nil
}

func (m *MockStore) Load(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadFunc != nil {
		return m.LoadFunc(key)
	}
	return nil, false, nil
}

func (m *MockStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls = append(m.ClearCalls, key)
	if m.ClearFunc != nil {
		return m.ClearFunc(key)
	}
	return nil
}
