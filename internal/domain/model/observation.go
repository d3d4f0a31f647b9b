package model

// Ref is the outcome of a single provider lookup. Found distinguishes a
// concrete reference from a confirmed-empty result (a repository with no
// releases, for example). Transport and authorization faults are reported as
// errors alongside the Ref, never folded into it.
type Ref struct {
	URL   string
	Found bool
}

// FoundRef wraps a concrete reference URL.
func FoundRef(url string) Ref {
	return Ref{URL: url, Found: true}
}

// Observation is the per-cycle snapshot fetched for one repository. It is
// never persisted directly; it is compared against stored state and folded in.
type Observation struct {
	Release Ref
	Commit  Ref
}

// ChangeSet reports, independently for release and commit, whether an
// observation differs from stored state.
type ChangeSet struct {
	Release bool
	Commit  bool
}

// Any reports whether either aspect changed.
func (c ChangeSet) Any() bool {
	return c.Release || c.Commit
}
