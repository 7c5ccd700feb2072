package application

import (
	"sync"

	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// PublisherProvider holds a mutex-protected reference to the current
// driven.BadgePublisher, allowing credential updates to take effect
// without restarting the process.
type PublisherProvider struct {
	mu        sync.RWMutex
	publisher driven.BadgePublisher
}

// NewPublisherProvider creates a new provider with the given initial publisher.
// publisher may be nil if no gist credentials are available at startup.
func NewPublisherProvider(publisher driven.BadgePublisher) *PublisherProvider {
	return &PublisherProvider{
		publisher: publisher,
	}
}

// Get returns the current publisher. Callers should check for nil
// if the provider was created without initial credentials.
func (p *PublisherProvider) Get() driven.BadgePublisher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.publisher
}

// Replace swaps the current publisher with a new one. The next caller of
// Get() will receive the new value.
func (p *PublisherProvider) Replace(publisher driven.BadgePublisher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publisher = publisher
}

// HasPublisher returns true if a non-nil publisher is currently held.
func (p *PublisherProvider) HasPublisher() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.publisher != nil
}
