package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

func TestInMemoryStore_GetUnknownSession(t *testing.T) {
	s := NewInMemoryStore()
	st, err := s.Get("missing")
	assert.NoError(t, err)
	assert.Equal(t, "missing", st.SessionID)
	assert.Empty(t, st.Messages)
	// A bare Get does not persist anything.
	assert.Equal(t, 0, s.Len())
}

func TestInMemoryStore_PutGetRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	st := core.NewState("s1")
	st.Append(core.NewUserMessage("hello"))
	st.Next = "SearchAgent"

	assert.NoError(t, s.Put("s1", st))

	got, err := s.Get("s1")
	assert.NoError(t, err)
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.Equal(t, "SearchAgent", got.Next)
}

func TestInMemoryStore_CloneIsolation(t *testing.T) {
	s := NewInMemoryStore()
	st := core.NewState("s1")
	st.Append(core.NewUserMessage("original"))
	assert.NoError(t, s.Put("s1", st))

	// Mutating the caller's copy after Put must not reach the store.
	st.Append(core.NewUserMessage("after put"))
	got, _ := s.Get("s1")
	assert.Len(t, got.Messages, 1)

	// Mutating a Get result must not reach the store either.
	got.Append(core.NewUserMessage("on read copy"))
	again, _ := s.Get("s1")
	assert.Len(t, again.Messages, 1)
}

func TestInMemoryStore_PutReplacesWholeState(t *testing.T) {
	s := NewInMemoryStore()
	st := core.NewState("s1")
	st.Append(core.NewUserMessage("a"), core.NewUserMessage("b"))
	assert.NoError(t, s.Put("s1", st))

	shorter := core.NewState("s1")
	shorter.Append(core.NewUserMessage("only"))
	assert.NoError(t, s.Put("s1", shorter))

	got, _ := s.Get("s1")
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, "only", got.Messages[0].Content)
}

func TestInMemoryStore_LockSerializesSameSession(t *testing.T) {
	s := NewInMemoryStore()
	var inCritical, maxInCritical int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock("s1")
			defer unlock()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			st, _ := s.Get("s1")
			st.Append(core.NewUserMessage("m"))
			_ = s.Put("s1", st)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
	st, _ := s.Get("s1")
	assert.Len(t, st.Messages, 10)
}

func TestInMemoryStore_ConcurrentDistinctSessions(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%5)
			unlock := s.Lock(id)
			defer unlock()
			st, err := s.Get(id)
			assert.NoError(t, err)
			st.Append(core.NewUserMessage("m"))
			assert.NoError(t, s.Put(id, st))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, s.Len())
}
