package accesslog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(MemoryDSN, limit)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	at := time.Unix(1700000000, 42)

	require.NoError(t, s.Record(ctx, Entry{
		Time: at, Conn: 1, Remote: "127.0.0.1:5000", Method: "GET",
		URL: "http://example.com/", Outcome: OutcomeMiss, Bytes: 120,
	}))
	require.NoError(t, s.Record(ctx, Entry{
		Time: at, Conn: 2, Remote: "127.0.0.1:5001", Method: "GET",
		URL: "http://example.com/", Outcome: OutcomeHit, Bytes: 120,
	}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, OutcomeHit, got[0].Outcome)
	assert.Equal(t, uint64(2), got[0].Conn)
	assert.Equal(t, OutcomeMiss, got[1].Outcome)
	assert.Equal(t, int64(120), got[1].Bytes)
	assert.True(t, at.Equal(got[1].Time))
}

func TestRecordPrunesToLimit(t *testing.T) {
	s := openTestStore(t, 3)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, s.Record(ctx, Entry{
			Time: time.Now(), Conn: uint64(i), Method: "GET",
			URL: fmt.Sprintf("http://h/%d", i), Outcome: OutcomeMiss,
		}))
	}

	got, err := s.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "http://h/6", got[0].URL)
	assert.Equal(t, "http://h/4", got[2].URL)
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t, 3)
	got, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.db")
	s, err := Open(path, 5)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), Entry{Time: time.Now(), Method: "POST", Outcome: OutcomeDropped}))
	require.NoError(t, s.Close())

	s, err = Open(path, 5)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, OutcomeDropped, got[0].Outcome)
}

func TestOpenRejectsBadLimit(t *testing.T) {
	_, err := Open(MemoryDSN, 0)
	assert.Error(t, err)
}
