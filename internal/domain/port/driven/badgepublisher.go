package driven

import (
	"context"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// BadgePublisher defines the driven port for reading and updating the
// externally hosted badge document.
type BadgePublisher interface {
	// Current returns the badge currently published, or nil if the badge
	// file does not exist yet.
	Current(ctx context.Context) (*model.Badge, error)
	// Publish replaces the published badge document.
	Publish(ctx context.Context, badge model.Badge) error
}
