package watchlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axi0m/ratatoskr/internal/domain/model"
)

func TestParse_MixedHosts(t *testing.T) {
	csv := strings.NewReader(
		"URL,Category\n" +
			"https://github.com/owner1/repoA,tooling\n" +
			"https://gitlab.com/owner2/repoB,tooling\n",
	)

	entries, err := parse(csv)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, model.WatchEntry{Owner: "owner1", Name: "repoA", Host: model.HostGitHub}, entries[0])
	assert.Equal(t, model.WatchEntry{Owner: "owner2", Name: "repoB", Host: model.HostGitLab}, entries[1])
}

func TestParse_SkipsHeader(t *testing.T) {
	// Even a header that looks like a valid URL row is skipped.
	csv := strings.NewReader("https://github.com/header/row\n")

	entries, err := parse(csv)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParse_SkipsUnknownHost(t *testing.T) {
	csv := strings.NewReader(
		"URL\n" +
			"https://bitbucket.org/owner/repo\n" +
			"https://github.com/owner1/repoA\n",
	)

	entries, err := parse(csv)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "owner1", entries[0].Owner)
}

func TestParse_SkipsMalformedRow(t *testing.T) {
	csv := strings.NewReader(
		"URL\n" +
			"https://github.com\n" +
			"https://github.com/owner1/repoA\n",
	)

	entries, err := parse(csv)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "repoA", entries[0].Name)
}

func TestParse_EmptyFile(t *testing.T) {
	entries, err := parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntries_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.csv")
	content := "URL,Notes\nhttps://github.com/its-a-feature/Mythic,c2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := NewFile(path).Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "its-a-feature", entries[0].Owner)
	assert.Equal(t, "Mythic", entries[0].Name)
}

func TestEntries_MissingFile(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "absent.csv")).Entries()
	require.Error(t, err)
}
