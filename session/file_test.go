package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
)

var _ Store = (*FileStore)(nil)

// -------------------- FileStore Tests --------------------

func TestFileStoreGetUnknownSession(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	st, err := store.Get("nope")
	require.NoError(t, err)
	assert.Equal(t, "nope", st.SessionID)
	assert.Empty(t, st.Messages)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	st := core.NewState("s1")
	st.Append(core.NewUserMessage("hello"))
	st.Next = "SearchAgent"
	require.NoError(t, store.Put("s1", st))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.Equal(t, "SearchAgent", got.Next)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	st := core.NewState("s1")
	st.Append(core.NewUserMessage("persist me"))
	require.NoError(t, store.Put("s1", st))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get("s1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "persist me", got.Messages[0].Content)
}

func TestFileStorePutReplacesWholeState(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	first := core.NewState("s1")
	first.Append(core.NewUserMessage("one"), core.NewUserMessage("two"))
	require.NoError(t, store.Put("s1", first))

	second := core.NewState("s1")
	second.Append(core.NewUserMessage("only"))
	require.NoError(t, store.Put("s1", second))

	got, err := store.Get("s1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "only", got.Messages[0].Content)
}

func TestFileStoreEscapesSessionID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	st := core.NewState("../escape")
	st.Append(core.NewUserMessage("contained"))
	require.NoError(t, store.Put("../escape", st))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(entries[0].Name()), entries[0].Name())

	got, err := store.Get("../escape")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err = store.Get("bad")
	assert.Error(t, err)
}
