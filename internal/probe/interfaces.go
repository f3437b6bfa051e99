package probe

import (
	"context"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
	"github.com/Adda-Baaj/handle-probe/pkg/publishers"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
)

// UsersAPI is the subset of the twitter client the probe needs.
type UsersAPI interface {
	Lookup(ctx context.Context, screenNames ...string) (*twitter.Result, error)
	Show(ctx context.Context, screenName string) (*twitter.Result, error)
}

// StatusStore remembers the last status seen per screen name.
type StatusStore interface {
	LastStatus(screenName string) (domain.AccountStatus, bool, error)
	SaveStatus(screenName string, status domain.AccountStatus) error
}

// EventPublisher publishes status changes downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
