package probe

import (
	"strings"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
)

// Reconcile diffs requested screen names against the profiles a lookup
// returned. Matching ignores case and a leading @. Blank and repeated names
// are dropped. Both found and missing follow the requested order.
func Reconcile(requested []string, profiles []domain.Profile) (found []domain.Profile, missing []string) {
	byName := make(map[string]domain.Profile, len(profiles))
	for _, p := range profiles {
		key := domain.NormalizeScreenName(p.ScreenName)
		if key == "" {
			continue
		}
		if _, ok := byName[key]; !ok {
			byName[key] = p
		}
	}

	for _, name := range dedupe(requested) {
		if p, ok := byName[domain.NormalizeScreenName(name)]; ok {
			found = append(found, p)
			continue
		}
		missing = append(missing, name)
	}
	return found, missing
}

// Classify maps a show response for an account the lookup omitted.
func Classify(res *twitter.Result) domain.AccountStatus {
	switch {
	case res == nil:
		return domain.StatusUnknown
	case res.Kind == twitter.KindProfile && res.Profile != nil:
		return domain.StatusActive
	case res.HasErrorCode(domain.ErrCodeSuspended):
		return domain.StatusSuspended
	case res.HasErrorCode(domain.ErrCodeNotFound), res.HasErrorCode(domain.ErrCodeUserNotFound):
		return domain.StatusNotFound
	default:
		return domain.StatusUnknown
	}
}

// dedupe trims names and removes blanks and case-insensitive repeats,
// keeping the first spelling seen.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		key := domain.NormalizeScreenName(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimPrefix(strings.TrimSpace(raw), "@"))
	}
	return out
}

// batches splits names into consecutive chunks of at most size entries.
func batches(names []string, size int) [][]string {
	if size <= 0 {
		size = len(names)
	}
	var out [][]string
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		out = append(out, names[start:end])
	}
	return out
}
