package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

type seedStore struct {
	mockStore

	existing  map[string]bool
	inserts   []model.WatchEntry
	insertAt  []time.Time
	insertErr error
}

func (s *seedStore) Contains(_ context.Context, owner, name string) (bool, error) {
	return s.existing[owner+"/"+name], nil
}

func (s *seedStore) Insert(_ context.Context, owner, name string, host model.Host, observedAt time.Time) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserts = append(s.inserts, model.WatchEntry{Owner: owner, Name: name, Host: host})
	s.insertAt = append(s.insertAt, observedAt)
	return nil
}

type staticWatchlist struct {
	entries []model.WatchEntry
	err     error
}

func (w *staticWatchlist) Entries() ([]model.WatchEntry, error) {
	return w.entries, w.err
}

func TestLoad_SeedsNewEntriesOnly(t *testing.T) {
	store := &seedStore{existing: map[string]bool{"danielmiessler/SecLists": true}}
	source := &staticWatchlist{entries: []model.WatchEntry{
		{Owner: "danielmiessler", Name: "SecLists", Host: model.HostGitHub},
		{Owner: "inkscape", Name: "inkscape", Host: model.HostGitLab},
	}}

	svc := NewLoadService(store, source)
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, store.inserts, 1)
	assert.Equal(t, model.WatchEntry{Owner: "inkscape", Name: "inkscape", Host: model.HostGitLab}, store.inserts[0])
	assert.True(t, store.insertAt[0].Equal(now))
}

func TestLoad_EmptyWatchlist(t *testing.T) {
	store := &seedStore{}
	require.NoError(t, NewLoadService(store, &staticWatchlist{}).Run(context.Background()))
	assert.Empty(t, store.inserts)
}

func TestLoad_SourceErrorPropagates(t *testing.T) {
	err := NewLoadService(&seedStore{}, &staticWatchlist{err: errors.New("no such file")}).Run(context.Background())
	require.ErrorContains(t, err, "read watch-list")
}

func TestLoad_DuplicateInsertSkippedAndRunContinues(t *testing.T) {
	store := &seedStore{insertErr: driven.ErrAlreadyTracked}
	source := &staticWatchlist{entries: []model.WatchEntry{
		{Owner: "o", Name: "r", Host: model.HostGitHub},
	}}

	require.NoError(t, NewLoadService(store, source).Run(context.Background()))
	assert.Empty(t, store.inserts)
}

func TestLoad_InsertErrorAbortsRun(t *testing.T) {
	store := &seedStore{insertErr: errors.New("disk full")}
	source := &staticWatchlist{entries: []model.WatchEntry{
		{Owner: "o", Name: "r", Host: model.HostGitHub},
	}}

	err := NewLoadService(store, source).Run(context.Background())
	require.ErrorContains(t, err, "insert o/r")
}
