package model

import "strings"

// EventContext carries the CI event metadata a pipeline run executes under.
// All fields are empty when running outside a CI workflow.
type EventContext struct {
	Event      string // Triggering event name, e.g. "push" or "pull_request".
	Ref        string // Fully qualified ref, e.g. "refs/heads/main".
	Branch     string // Short ref name, e.g. "main".
	CommitSHA  string
	Repository string // "owner/name" of the repository being built.
}

// InCI reports whether the process is running inside a CI workflow.
func (e EventContext) InCI() bool {
	return e.Event != ""
}

// IsTag reports whether the run was triggered by a tag ref.
func (e EventContext) IsTag() bool {
	return strings.HasPrefix(e.Ref, "refs/tags/")
}

// IsBranchPush reports whether the run is a push to the given branch.
func (e EventContext) IsBranchPush(branch string) bool {
	return e.Event == "push" && !e.IsTag() && e.Branch == branch
}
