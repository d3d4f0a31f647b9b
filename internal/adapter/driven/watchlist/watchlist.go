// Package watchlist reads the CSV watch-list of repositories to track.
package watchlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WatchlistSource = (*File)(nil)

// File is a CSV watch-list on disk. The first column of each data row holds a
// full repository URL; the header row is always skipped.
type File struct {
	path string
}

// NewFile creates a watch-list source reading from path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Entries parses the watch-list. Rows whose URL names neither gitlab nor
// github, and rows too short to carry owner and name path segments, are
// skipped without error.
func (f *File) Entries() ([]model.WatchEntry, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open watch-list %s: %w", f.path, err)
	}
	defer file.Close()

	entries, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse watch-list %s: %w", f.path, err)
	}

	return entries, nil
}

func parse(r io.Reader) ([]model.WatchEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var entries []model.WatchEntry
	header := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		if header {
			header = false
			continue
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}

		rawURL := record[0]

		// Classification is a substring match on the whole URL; any other
		// host is skipped silently.
		var host model.Host
		switch {
		case strings.Contains(rawURL, "gitlab"):
			host = model.HostGitLab
		case strings.Contains(rawURL, "github"):
			host = model.HostGitHub
		default:
			continue
		}

		// https://github.com/owner/repo splits into segments with owner and
		// name at positions 3 and 4.
		segments := strings.Split(rawURL, "/")
		if len(segments) < 5 || segments[3] == "" || segments[4] == "" {
			slog.Warn("skipping malformed watch-list row", "url", rawURL)
			continue
		}

		entries = append(entries, model.WatchEntry{
			Owner: segments[3],
			Name:  segments[4],
			Host:  host,
		})
	}

	return entries, nil
}
