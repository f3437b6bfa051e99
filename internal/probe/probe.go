package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
	"github.com/Adda-Baaj/handle-probe/internal/logger"
	"github.com/Adda-Baaj/handle-probe/pkg/publishers"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
	"github.com/Adda-Baaj/handle-probe/pkg/watchlists"
)

var (
	// ErrRateLimited is returned when the API refuses a request for rate limit reasons.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnclassified is returned when a show answer says nothing about the
	// account, such as a 5xx or an error code other than 34, 50 or 64.
	ErrUnclassified = errors.New("account status not determinable")
)

// Service checks watchlists against the users API and reports status changes.
type Service struct {
	api       UsersAPI
	store     StatusStore
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
}

// NewService wires a probe. store and publisher may be nil, in which case
// statuses are not remembered and no events are sent.
func NewService(api UsersAPI, store StatusStore, publisher EventPublisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		api:       api,
		store:     store,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Check resolves the status of every screen name in the watchlist.
func (s *Service) Check(ctx context.Context, w watchlists.Watchlist) ([]domain.AccountState, error) {
	if s == nil || s.api == nil {
		return nil, fmt.Errorf("probe service is not initialized")
	}

	names := dedupe(w.ScreenNames)
	if len(names) == 0 {
		return nil, fmt.Errorf("watchlist %s has no screen names", w.ID)
	}

	delay := w.RequestDelay()
	chunks := batches(names, twitter.MaxLookupBatch)
	states := make([]domain.AccountState, 0, len(names))
	var errs []error

	for i, chunk := range chunks {
		batch, err := s.checkBatch(ctx, w, chunk, delay)
		states = append(states, batch...)
		if err != nil {
			errs = append(errs, fmt.Errorf("watchlist %s batch %d: %w", w.ID, i+1, err))
			// unclassified accounts are skipped; anything else ends the pass
			if !errors.Is(err, ErrUnclassified) {
				return states, errors.Join(errs...)
			}
		}

		if i < len(chunks)-1 {
			if err := sleep(ctx, delay); err != nil {
				return states, errors.Join(append(errs, err)...)
			}
		}
	}
	return states, errors.Join(errs...)
}

func (s *Service) checkBatch(ctx context.Context, w watchlists.Watchlist, names []string, delay time.Duration) ([]domain.AccountState, error) {
	res, err := s.api.Lookup(ctx, names...)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("lookup: empty result")
	}

	var profiles []domain.Profile
	switch {
	case res.RateLimited():
		return nil, fmt.Errorf("lookup: %w", ErrRateLimited)
	case res.Kind == twitter.KindProfileList:
		profiles = res.Profiles
	case res.HasErrorCode(domain.ErrCodeNotFound), res.HasErrorCode(domain.ErrCodeNoUserMatches):
		// every requested name is missing
	case res.Kind == twitter.KindAPIError:
		if apiErr, ok := res.FirstError(); ok {
			return nil, fmt.Errorf("lookup: %w", apiErr)
		}
		return nil, fmt.Errorf("lookup: api error status %d", res.StatusCode)
	default:
		return nil, fmt.Errorf("lookup: unexpected %s response", res.Kind)
	}

	found, missing := Reconcile(names, profiles)
	checkedAt := s.now().UTC()

	states := make([]domain.AccountState, 0, len(names))
	for i := range found {
		p := found[i]
		states = append(states, domain.AccountState{
			ScreenName: domain.NormalizeScreenName(p.ScreenName),
			Status:     domain.StatusActive,
			Profile:    &p,
			CheckedAt:  checkedAt,
		})
	}

	var skipped []error
	classify := w.ClassifyMissingValue()
	for i, name := range missing {
		state := domain.AccountState{
			ScreenName: domain.NormalizeScreenName(name),
			Status:     domain.StatusUnknown,
			CheckedAt:  checkedAt,
		}
		if classify {
			if i > 0 {
				if err := sleep(ctx, delay); err != nil {
					return nil, err
				}
			}
			state, err = s.classify(ctx, state)
			if errors.Is(err, ErrUnclassified) {
				skipped = append(skipped, err)
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		states = append(states, state)
	}
	return states, errors.Join(skipped...)
}

func (s *Service) classify(ctx context.Context, state domain.AccountState) (domain.AccountState, error) {
	res, err := s.api.Show(ctx, state.ScreenName)
	if err != nil {
		return state, fmt.Errorf("show %s: %w", state.ScreenName, err)
	}
	if res == nil {
		return state, fmt.Errorf("show %s: empty result", state.ScreenName)
	}
	if res.RateLimited() {
		return state, fmt.Errorf("show %s: %w", state.ScreenName, ErrRateLimited)
	}
	state.Status = Classify(res)
	if state.Status == domain.StatusUnknown {
		// leave the stored status alone until the API gives a real answer
		detail := fmt.Sprintf("status %d", res.StatusCode)
		if apiErr, ok := res.FirstError(); ok {
			detail = apiErr.Error()
		}
		return state, fmt.Errorf("show %s: %w: %s", state.ScreenName, ErrUnclassified, detail)
	}
	if state.Status == domain.StatusActive {
		state.Profile = res.Profile
	}
	return state, nil
}

// Run checks every watchlist, publishing an event for each status that
// differs from the stored one. A failing watchlist does not stop the others.
func (s *Service) Run(ctx context.Context, lists []watchlists.Watchlist) error {
	if len(lists) == 0 {
		return fmt.Errorf("no watchlists configured")
	}

	var errs []error
	for _, w := range lists {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.runWatchlist(ctx, w); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("watchlist check failed", "watchlist_error", map[string]any{
				"watchlist_id": w.ID,
				"error":        err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

func (s *Service) runWatchlist(ctx context.Context, w watchlists.Watchlist) error {
	states, err := s.Check(ctx, w)

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}

	changed := 0
	for _, state := range states {
		published, err := s.record(ctx, w, state)
		if err != nil {
			errs = append(errs, err)
		}
		if published {
			changed++
		}
	}

	s.log.InfoObj("watchlist check completed", "watchlist_result", map[string]any{
		"watchlist_id":   w.ID,
		"accounts":       len(states),
		"status_changes": changed,
	})
	return errors.Join(errs...)
}

// record compares state with the stored status, publishes on change and
// stores the new status. First sightings are stored without an event.
func (s *Service) record(ctx context.Context, w watchlists.Watchlist, state domain.AccountState) (bool, error) {
	if s.store == nil {
		return false, nil
	}

	previous, seen, err := s.store.LastStatus(state.ScreenName)
	if err != nil {
		return false, fmt.Errorf("load status %s: %w", state.ScreenName, err)
	}

	published := false
	var pubErr error
	if seen && previous != state.Status {
		evt := publishers.NewEvent(w.ID, previous, state)
		if state.Profile != nil && state.Profile.Status != nil {
			evt.LastClient = twitter.ParseSource(state.Profile.Status.Source).Name
		}
		s.log.InfoObj("account status changed", "status_change", map[string]any{
			"watchlist_id": w.ID,
			"screen_name":  state.ScreenName,
			"previous":     previous,
			"current":      state.Status,
		})
		if s.publisher != nil {
			n, err := s.publisher.Publish(ctx, evt)
			if err != nil && n == 0 {
				// keep the old status so the change is retried next pass
				return false, fmt.Errorf("publish %s: %w", state.ScreenName, err)
			}
			if err != nil {
				pubErr = fmt.Errorf("publish %s: %w", state.ScreenName, err)
			}
		}
		published = true
	}

	if err := s.store.SaveStatus(state.ScreenName, state.Status); err != nil {
		return published, errors.Join(pubErr, fmt.Errorf("save status %s: %w", state.ScreenName, err))
	}
	return published, pubErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
