package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAFSStorage_LocalVault(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	v, err := New(NewAFSStorage(), DefaultConfig(root))
	require.NoError(t, err)
	require.NoError(t, v.Init(ctx))
	require.NoError(t, v.Init(ctx))

	nested := filepath.Join(root, "unprocessed", "team", "notes.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0o755))
	require.NoError(t, os.WriteFile(nested, []byte("notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unprocessed", "top.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unprocessed", ".hidden"), []byte("h"), 0o644))

	files, err := v.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"team/notes.txt", "top.txt"}, files)

	data, err := v.Read(ctx, "team/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes", string(data))

	require.NoError(t, v.MarkProcessed(ctx, "team/notes.txt"))

	_, err = os.Stat(nested)
	assert.True(t, os.IsNotExist(err))
	moved, err := os.ReadFile(filepath.Join(root, "processed", "team", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "notes", string(moved))

	done, err := v.IsProcessed(ctx, "team/notes.txt")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestAFSStorage_RelativeRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	ctx := context.Background()

	v, err := New(NewAFSStorage(), DefaultConfig("_local_vault"))
	require.NoError(t, err)
	require.NoError(t, v.Init(ctx))

	nested := filepath.Join("_local_vault", "unprocessed", "a", "b", "x.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0o755))
	require.NoError(t, os.WriteFile(nested, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join("_local_vault", "unprocessed", "top.txt"), []byte("top"), 0o644))

	files, err := v.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/x.txt", "top.txt"}, files)

	data, err := v.Read(ctx, "a/b/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	require.NoError(t, v.MarkProcessed(ctx, "a/b/x.txt"))
	assert.FileExists(t, filepath.Join("_local_vault", "processed", "a", "b", "x.txt"))
	assert.NoFileExists(t, nested)

	processed, err := v.ListProcessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/x.txt"}, processed)
}
