// Package twittertest provides an in-memory users API for tests. It mimics
// the response quirks of users/lookup, users/show and users/search.
package twittertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
)

// Request records one call received by the server.
type Request struct {
	Path          string
	Query         map[string]string
	Authorization string
}

// Server is a fake users API backed by httptest.
type Server struct {
	*httptest.Server

	// RequireAuth rejects requests without an OAuth Authorization header.
	RequireAuth bool

	mu        sync.Mutex
	accounts  map[string]domain.Profile
	order     []string
	suspended map[string]bool
	requests  []Request
	nextID    int64
}

// NewServer starts an empty fake API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		accounts:  make(map[string]domain.Profile),
		suspended: make(map[string]bool),
		nextID:    1000,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/users/lookup.json", s.handleLookup)
	mux.HandleFunc("/1.1/users/show.json", s.handleShow)
	mux.HandleFunc("/1.1/users/search.json", s.handleSearch)
	s.Server = httptest.NewServer(s.authenticate(mux))
	return s
}

// NewSeededServer starts a fake API with the accounts used by the bundled
// example queries: `_a` is suspended and `lkjawer9` is not registered.
func NewSeededServer() *Server {
	s := NewServer()
	s.AddAccount(domain.Profile{ScreenName: "neworganizing", Name: "New Organizing Institute", Description: "Training organizers", Location: "Washington, DC"})
	s.AddAccount(domain.Profile{ScreenName: "noitoolbox", Name: "NOI Toolbox", Description: "Tools from the New Organizing Institute"})
	s.AddAccount(domain.Profile{ScreenName: "doritosloaded", Name: "Doritos Loaded", Description: "Snacks"})
	s.AddAccount(domain.Profile{ScreenName: "ChuckGrassley", Name: "Chuck Grassley", Description: "Senator from Iowa", Verified: true,
		Status: &domain.Tweet{IDStr: "1", Text: "Hello Iowa", Source: `<a href="http://twitter.com/download/iphone" rel="nofollow">Twitter for iPhone</a>`}})
	s.AddAccount(domain.Profile{ScreenName: "GrassleyPress", Name: "Grassley Press", Description: "Press office of Senator Grassley"})
	s.AddAccount(domain.Profile{ScreenName: "SenatorChuckFan", Name: "Chuck Fan", Description: "Fan of the Senator"})
	s.AddAccount(domain.Profile{ScreenName: "SuffolkSheriff", Name: "Suffolk County Sheriff", Description: "Sheriff Vincent DeMarco, Suffolk County"})
	s.AddAccount(domain.Profile{ScreenName: "_a", Name: "A"})
	s.Suspend("_a")
	return s
}

// BaseURL is the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/1.1/"
}

// AddAccount registers a profile. IDs are assigned when missing.
func (s *Server) AddAccount(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.NormalizeScreenName(p.ScreenName)
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	}
	if p.IDStr == "" {
		p.IDStr = strconv.FormatInt(p.ID, 10)
	}
	if _, exists := s.accounts[key]; !exists {
		s.order = append(s.order, key)
	}
	s.accounts[key] = p
}

// Suspend marks a registered account as suspended.
func (s *Server) Suspend(screenName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suspended[domain.NormalizeScreenName(screenName)] = true
}

// Reinstate clears a suspension.
func (s *Server) Reinstate(screenName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.suspended, domain.NormalizeScreenName(screenName))
}

// Remove deletes an account so it reads as unregistered.
func (s *Server) Remove(screenName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.NormalizeScreenName(screenName)
	delete(s.accounts, key)
	delete(s.suspended, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Requests returns a copy of the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				q[k] = v[0]
			}
		}
		auth := r.Header.Get("Authorization")

		s.mu.Lock()
		s.requests = append(s.requests, Request{Path: r.URL.Path, Query: q, Authorization: auth})
		remaining := 900 - len(s.requests)
		requireAuth := s.RequireAuth
		s.mu.Unlock()

		w.Header().Set("x-rate-limit-limit", "900")
		w.Header().Set("x-rate-limit-remaining", strconv.Itoa(remaining))
		w.Header().Set("x-rate-limit-reset", "1700000000")

		if requireAuth && !strings.HasPrefix(auth, "OAuth ") {
			writeErrors(w, http.StatusUnauthorized, 215, "Bad Authentication data.")
			return
		}
		if r.Method != http.MethodGet {
			writeErrors(w, http.StatusMethodNotAllowed, 0, "method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var out []domain.Profile
	seen := make(map[string]bool)
	for _, name := range strings.Split(r.URL.Query().Get("screen_name"), ",") {
		key := domain.NormalizeScreenName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		p, ok := s.accounts[key]
		if !ok || s.suspended[key] {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()

	if len(out) == 0 {
		writeErrors(w, http.StatusNotFound, domain.ErrCodeNotFound, "Sorry, that page does not exist.")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	key := domain.NormalizeScreenName(r.URL.Query().Get("screen_name"))

	s.mu.Lock()
	p, ok := s.accounts[key]
	suspended := s.suspended[key]
	s.mu.Unlock()

	switch {
	case !ok:
		writeErrors(w, http.StatusNotFound, domain.ErrCodeNotFound, "Sorry, that page does not exist.")
	case suspended:
		writeErrors(w, http.StatusForbidden, domain.ErrCodeSuspended, "User has been suspended.")
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	terms := strings.Fields(strings.ToLower(q.Get("q")))
	page := atoiDefault(q.Get("page"), 1)
	count := atoiDefault(q.Get("count"), 20)
	if count > 20 {
		count = 20
	}

	type scored struct {
		p     domain.Profile
		score int
		pos   int
	}

	s.mu.Lock()
	var hits []scored
	for pos, key := range s.order {
		if s.suspended[key] {
			continue
		}
		p := s.accounts[key]
		haystack := strings.ToLower(p.Name + " " + p.ScreenName + " " + p.Description)
		score := 0
		for _, t := range terms {
			if strings.Contains(haystack, t) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{p: p, score: score, pos: pos})
		}
	}
	s.mu.Unlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	out := []domain.Profile{}
	start := (page - 1) * count
	for i := start; i < len(hits) && i < start+count; i++ {
		out = append(out, hits[i].p)
	}
	writeJSON(w, http.StatusOK, out)
}

func atoiDefault(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func writeErrors(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, map[string]any{
		"errors": []domain.APIError{{Code: code, Message: msg}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
