package publishers

import (
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
	"github.com/google/uuid"
)

// Event represents a status change published downstream.
type Event struct {
	ID             string               `json:"id"`
	WatchlistID    string               `json:"watchlist_id"`
	ScreenName     string               `json:"screen_name"`
	PreviousStatus domain.AccountStatus `json:"previous_status"`
	CurrentStatus  domain.AccountStatus `json:"current_status"`
	Profile        *domain.Profile      `json:"profile,omitempty"`
	LastClient     string               `json:"last_client,omitempty"`
	DetectedAt     time.Time            `json:"detected_at"`
}

// NewEvent constructs an Event for a status transition observed in a watchlist.
func NewEvent(watchlistID string, previous domain.AccountStatus, state domain.AccountState) Event {
	detected := state.CheckedAt
	if detected.IsZero() {
		detected = time.Now()
	}
	return Event{
		ID:             uuid.NewString(),
		WatchlistID:    watchlistID,
		ScreenName:     state.ScreenName,
		PreviousStatus: previous,
		CurrentStatus:  state.Status,
		Profile:        state.Profile,
		DetectedAt:     detected.UTC(),
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"watchlist_id":   e.WatchlistID,
		"current_status": string(e.CurrentStatus),
	}
}
