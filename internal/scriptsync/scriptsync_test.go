package scriptsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, dir, name, body string) {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Megatron",
			Email: "megatron@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func initScriptRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, dir, "main.txt", "print hello\n")
	return dir
}

func TestSyncClonesThenPulls(t *testing.T) {
	t.Parallel()

	source := initScriptRepo(t)
	dest := filepath.Join(t.TempDir(), "scripts")
	opts := Options{URL: source, Dir: dest}

	res, err := Sync(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, ActionCloned, res.Action)
	require.Len(t, res.Head, 40)

	data, err := os.ReadFile(filepath.Join(dest, "main.txt"))
	require.NoError(t, err)
	require.Equal(t, "print hello\n", string(data))

	res, err = Sync(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, ActionUpToDate, res.Action)

	commitFile(t, source, "recover.txt", "setdo \"ION Output Enable\" 0\n")
	updated, err := Sync(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, updated.Action)
	require.NotEqual(t, res.Head, updated.Head)
	require.FileExists(t, filepath.Join(dest, "recover.txt"))
}

func TestSyncClonesIntoEmptyDirectory(t *testing.T) {
	t.Parallel()

	source := initScriptRepo(t)
	dest := t.TempDir()

	res, err := Sync(context.Background(), Options{URL: source, Dir: dest})
	require.NoError(t, err)
	require.Equal(t, ActionCloned, res.Action)
}

func TestSyncRefusesForeignDirectory(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "local.txt"), []byte("print local\n"), 0o644))

	_, err := Sync(context.Background(), Options{URL: initScriptRepo(t), Dir: dest})
	require.ErrorContains(t, err, "not a git repository")
	require.FileExists(t, filepath.Join(dest, "local.txt"))
}

func TestSyncRefusesOtherRemote(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "scripts")
	_, err := Sync(context.Background(), Options{URL: initScriptRepo(t), Dir: dest})
	require.NoError(t, err)

	_, err = Sync(context.Background(), Options{URL: initScriptRepo(t), Dir: dest})
	require.ErrorContains(t, err, "expected")
}

func TestSyncValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := Sync(context.Background(), Options{Dir: t.TempDir()})
	require.Error(t, err)
	_, err = Sync(context.Background(), Options{URL: "https://example.com/scripts.git"})
	require.Error(t, err)
}
