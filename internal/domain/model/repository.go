package model

import "time"

// Host identifies the hosting provider a repository lives on.
type Host string

const (
	HostGitHub Host = "github"
	HostGitLab Host = "gitlab"
)

// IsValid reports whether h names a supported hosting provider.
func (h Host) IsValid() bool {
	return h == HostGitHub || h == HostGitLab
}

// TrackedRepository is one row of persisted tracking state. The tuple
// (Owner, Name, Host) identifies the row; LatestRelease and LatestCommit are
// empty until a change has been recorded for them.
type TrackedRepository struct {
	Owner         string
	Name          string
	Host          Host
	LatestRelease string
	LatestCommit  string
	LastUpdated   time.Time
}

// FullName returns the owner/name form of the repository identity.
func (r TrackedRepository) FullName() string {
	return r.Owner + "/" + r.Name
}

// WatchEntry is one parsed watch-list row: a repository to start tracking.
type WatchEntry struct {
	Owner string
	Name  string
	Host  Host
}
