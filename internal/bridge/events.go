package bridge

import (
	"sync"

	"github.com/lotas/lernbruecke/internal/types"
)

// Kind enumerates the closed set of bridge notifications.
type Kind int

const (
	// Navigated fires after every completed navigation.
	Navigated Kind = iota
	// OrganizationChanged fires whenever the selected organization
	// changes, regardless of which side (native picker or page)
	// initiated it.
	OrganizationChanged
	// SessionEstablished fires when a session arrives through the
	// surface instead of the login endpoints.
	SessionEstablished
)

// Notice is one bus notification.
type Notice struct {
	Kind           Kind
	URL            string
	OrganizationID string
	User           types.User
}

// Bus fans bridge notifications out to native screens. Subscriber
// channels are buffered and dropped-on-overflow: a slow subscriber
// loses notices rather than stalling the bridge.
type Bus struct {
	mu   sync.Mutex
	subs []chan Notice
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber channel.
func (b *Bus) Subscribe() <-chan Notice {
	ch := make(chan Notice, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers a notice to every subscriber without blocking.
func (b *Bus) Publish(n Notice) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- n:
		default:
		}
	}
}
