package application

import (
	"fmt"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// ShouldPublish decides whether a run may push the badge to the gist.
// Inside CI only a push to the configured branch publishes; tag pushes and
// other events never do. Outside CI (no event context) a manual run may
// publish. The returned reason is empty when publishing is allowed and
// names the closed gate otherwise.
func ShouldPublish(event model.EventContext, branch string) (bool, string) {
	if !event.InCI() {
		return true, ""
	}
	if event.IsTag() {
		return false, "tag ref"
	}
	if event.Event != "push" {
		return false, fmt.Sprintf("event %s", event.Event)
	}
	if event.Branch != branch {
		return false, fmt.Sprintf("branch %s", event.Branch)
	}
	return true, ""
}
