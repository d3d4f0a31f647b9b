// Package application contains use-case orchestration services.
package application

import "github.com/axi0m/ratatoskr/internal/domain/model"

// Detect compares an observation against stored tracking state. An aspect
// counts as changed only when the lookup actually found a reference and it
// differs from what is stored. A lookup that found nothing is never a change
// and never grounds for overwriting known state: absence of data is not
// evidence of staleness.
func Detect(tracked model.TrackedRepository, observed model.Observation) model.ChangeSet {
	return model.ChangeSet{
		Release: observed.Release.Found && observed.Release.URL != tracked.LatestRelease,
		Commit:  observed.Commit.Found && observed.Commit.URL != tracked.LatestCommit,
	}
}
