package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Set("a", "1"))
	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Remove("a"))
	require.NoError(t, s.Remove("a"))
	_, err = s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Clear())
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "store.json"))
	require.NoError(t, err)
	exerciseStore(t, fs)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	fs, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set(KeyToken, "abc"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, err := reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestFileStore_KeepsOtherWritersKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	daemon, err := NewFileStore(path)
	require.NoError(t, err)
	cli, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, daemon.Set(KeyToken, "abc"))
	require.NoError(t, cli.Set(KeyLentMoney, `[{"id":"l1"}]`))
	require.NoError(t, daemon.Set(KeyGlobalSettings, `{"theme":"dark"}`))

	v, err := daemon.Get(KeyLentMoney)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"l1"}]`, v)

	keys, err := cli.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyGlobalSettings, KeyLentMoney, KeyToken}, keys)
}

func TestFileStore_FailedWriteChangesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	fs, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set("a", "1"))

	// a directory where the temp file goes makes the write fail
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))
	assert.Error(t, fs.Set("b", "2"))
	assert.Error(t, fs.Clear())

	_, err = fs.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := fs.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	type payload struct {
		N int    `json:"n"`
		S string `json:"s"`
	}
	require.NoError(t, SetJSON(s, "p", payload{N: 3, S: "x"}))

	var got payload
	require.NoError(t, GetJSON(s, "p", &got))
	assert.Equal(t, payload{N: 3, S: "x"}, got)

	require.NoError(t, s.Set("bad", "{"))
	assert.Error(t, GetJSON(s, "bad", &got))

	assert.Equal(t, "", Lookup(s, "missing"))
	assert.Equal(t, "", Lookup(nil, "missing"))
}

func newTestRedis(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rs := NewRedisStoreFromClient(client, prefix, time.Second)
	t.Cleanup(func() { rs.Close() })
	return rs, mr
}

func TestRedisStore(t *testing.T) {
	rs, _ := newTestRedis(t, "assetsentinel:")
	exerciseStore(t, rs)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	rs, mr := newTestRedis(t, "assetsentinel:")
	require.NoError(t, mr.Set("other:token", "foreign"))

	require.NoError(t, rs.Set(KeyToken, "abc"))
	v, err := mr.Get("assetsentinel:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	keys, err := rs.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyToken}, keys)

	require.NoError(t, rs.Clear())
	assert.False(t, mr.Exists("assetsentinel:token"))
	assert.True(t, mr.Exists("other:token"), "clear leaves foreign keys alone")
}

func TestRedisStore_ConnectFailure(t *testing.T) {
	rs, mr := newTestRedis(t, "")
	addr := mr.Addr()
	mr.Close()

	_, err := rs.Get("a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, rs.Set("a", "1"))

	_, err = NewRedisStore(RedisOptions{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
