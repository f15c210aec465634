package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   uuid.UUID
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userID uuid.UUID) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() uuid.UUID {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	userA := uuid.New()
	userB := uuid.New()

	client1 := newMockClient("client-1", userA)
	client2 := newMockClient("client-2", userA)
	client3 := newMockClient("client-3", userB)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(userA))
	assert.Equal(t, 1, hub.ClientCount(userB))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(userA))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(userA))
	assert.Equal(t, 0, hub.ClientCount(userB))
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()
	userA := uuid.New()
	userB := uuid.New()

	clientA1 := newMockClient("client-a1", userA)
	clientA2 := newMockClient("client-a2", userA)
	clientB := newMockClient("client-b", userB)

	hub.Register(clientA1)
	hub.Register(clientA2)
	hub.Register(clientB)

	event := TransactionCreated(map[string]string{"id": "tx-1"})
	hub.Broadcast(userA, event)

	// Sends are asynchronous
	require.Eventually(t, func() bool {
		return len(clientA1.GetMessages()) == 1 && len(clientA2.GetMessages()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Empty(t, clientB.GetMessages())

	var received Event
	require.NoError(t, json.Unmarshal(clientA1.GetMessages()[0], &received))
	assert.Equal(t, "transaction.created", received.Type)
	assert.Equal(t, EntityTypeTransaction, received.Entity)
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()

	// Must not panic or block
	hub.Broadcast(uuid.New(), AccountUpdated(nil))
}

func TestHub_Broadcast_ClosedClient(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	client := newMockClient("client-1", userID)
	hub.Register(client)
	require.NoError(t, client.Close())

	// Send fails on the closed client; broadcast itself must not fail
	hub.Broadcast(userID, BudgetUpdated(nil))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, client.GetMessages())
}
