package watchlists

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package watchlists loads groups of screen names to watch from YAML/JSON files.

// Watchlist is a named group of screen names checked together.
type Watchlist struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	ScreenNames     []string `json:"screen_names" yaml:"screen_names"`
	RequestDelayMs  *int     `json:"request_delay_ms" yaml:"request_delay_ms"`
	ClassifyMissing *bool    `json:"classify_missing" yaml:"classify_missing"`
}

type registryFile struct {
	Watchlists []Watchlist `json:"watchlists" yaml:"watchlists"`
}

const defaultRequestDelayMs = 500

// Registry holds the watchlists loaded from a file.
type Registry struct {
	mu         sync.RWMutex
	watchlists []Watchlist
	idx        map[string]Watchlist
}

// LoadRegistry loads watchlists from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("watchlists file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlists file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read watchlists file: %w", err)
	}

	return ParseRegistry(raw, filepath.Ext(path))
}

// ParseRegistry builds a registry from raw file content. ext selects the
// decoder; an empty ext tries YAML then JSON.
func ParseRegistry(data []byte, ext string) (*Registry, error) {
	file, err := parseFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Watchlists) == 0 {
		return nil, errors.New("watchlists file contains no watchlists entries")
	}

	reg := &Registry{
		watchlists: make([]Watchlist, len(file.Watchlists)),
		idx:        make(map[string]Watchlist, len(file.Watchlists)),
	}
	for i := range file.Watchlists {
		w := sanitizeWatchlist(file.Watchlists[i])
		if err := validateWatchlist(w); err != nil {
			return nil, fmt.Errorf("watchlist[%d]: %w", i, err)
		}
		if _, exists := reg.idx[w.ID]; exists {
			return nil, fmt.Errorf("duplicate watchlist id %q", w.ID)
		}
		reg.watchlists[i] = w
		reg.idx[w.ID] = w
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseFile(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file registryFile
		if err := d.fn(data, &file); err == nil {
			return file, nil
		}
	}

	return registryFile{}, errors.New("watchlists file format not recognized (expected YAML or JSON)")
}

func sanitizeWatchlist(w Watchlist) Watchlist {
	w.ID = strings.TrimSpace(w.ID)
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		w.Name = w.ID
	}

	names := make([]string, 0, len(w.ScreenNames))
	for _, n := range w.ScreenNames {
		n = strings.TrimPrefix(strings.TrimSpace(n), "@")
		if n != "" {
			names = append(names, n)
		}
	}
	w.ScreenNames = names

	if w.RequestDelayMs == nil {
		def := defaultRequestDelayMs
		w.RequestDelayMs = &def
	}
	if w.ClassifyMissing == nil {
		def := true
		w.ClassifyMissing = &def
	}
	return w
}

func validateWatchlist(w Watchlist) error {
	if w.ID == "" {
		return errors.New("id is required")
	}
	if len(w.ScreenNames) == 0 {
		return fmt.Errorf("screen_names is required for watchlist %q", w.ID)
	}
	if w.RequestDelayMs != nil && *w.RequestDelayMs < 0 {
		return fmt.Errorf("request_delay_ms must not be negative for watchlist %q", w.ID)
	}
	return nil
}

// ByID returns the watchlist with the given id.
func (r *Registry) ByID(id string) (Watchlist, bool) {
	if r == nil {
		return Watchlist{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Watchlist{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.idx[id]
	return w, ok
}

// All returns all configured watchlists.
func (r *Registry) All() []Watchlist {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Watchlist, len(r.watchlists))
	copy(out, r.watchlists)
	return out
}

// RequestDelay returns the pause between consecutive requests for the
// watchlist. An unset delay defaults to 500ms; an explicit 0 disables it.
func (w Watchlist) RequestDelay() time.Duration {
	if w.RequestDelayMs == nil {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(*w.RequestDelayMs) * time.Millisecond
}

// ClassifyMissingValue returns classify_missing defaulting to true.
func (w Watchlist) ClassifyMissingValue() bool {
	if w.ClassifyMissing == nil {
		return true
	}
	return *w.ClassifyMissing
}
