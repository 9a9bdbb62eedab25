package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/service"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "seriesctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"seed", "show", "reconcile", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "show", "series-x", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}

// run executes seriesctl against dataDir with the badger store.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--store", "badger"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func seedDir(t *testing.T) (string, SeedResult) {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, dir, "seed", "--format", "json")
	require.NoError(t, err, out)

	var result SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Series)
	require.Len(t, result.Works, 3)
	return dir, result
}

func TestSeed_RefusesTwice(t *testing.T) {
	dir, _ := seedDir(t)

	_, err := run(t, dir, "seed")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestShow_GuestAndAuthor(t *testing.T) {
	dir, seeded := seedDir(t)

	out, err := run(t, dir, "show", seeded.Series, "--format", "json")
	require.NoError(t, err, out)
	var guest service.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &guest))
	assert.Equal(t, "The Long Road", guest.Title)
	assert.Equal(t, 2, guest.WorkCount, "restricted work hidden from guests")
	assert.False(t, guest.Restricted)

	out, err = run(t, dir, "show", seeded.Series, "--as", seeded.Users["alice"], "--format", "json")
	require.NoError(t, err, out)
	var author service.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &author))
	assert.Equal(t, 3, author.WorkCount)
	assert.Equal(t, "author", author.ViewerClass)
	assert.Equal(t, 4200+2600+5100, author.WordCount)
}

func TestShow_TextOutput(t *testing.T) {
	dir, seeded := seedDir(t)

	out, err := run(t, dir, "show", seeded.Series)
	require.NoError(t, err)
	assert.Contains(t, out, "The Long Road")
	assert.Contains(t, out, "Alice, Bob")
}

func TestShow_Missing(t *testing.T) {
	dir, _ := seedDir(t)

	_, err := run(t, dir, "show", "series-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestReconcile_AllInSync(t *testing.T) {
	dir, seeded := seedDir(t)

	out, err := run(t, dir, "reconcile", "--format", "json")
	require.NoError(t, err, out)
	var report service.ReconcileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Changed)

	out, err = run(t, dir, "reconcile", "--work", seeded.Works[0])
	require.NoError(t, err)
	assert.Contains(t, out, "checked 1 series, 0 changed")

	out, err = run(t, dir, "reconcile", seeded.Series)
	require.NoError(t, err)
	assert.Contains(t, out, "checked 1 series, 0 changed")
}

func TestToken(t *testing.T) {
	dir, seeded := seedDir(t)

	out, err := run(t, dir, "token", seeded.Users["bob"], "--format", "json")
	require.NoError(t, err, out)
	var result TokenResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, seeded.Users["bob"], result.UserID)
	assert.NotEmpty(t, result.Token)

	_, err = run(t, dir, "token", "user-nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
