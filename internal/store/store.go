// Package store keeps named demand profiles for the lifetime of the process.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"heatpump-economics/internal/model"
)

var (
	ErrProfileExists   = errors.New("profile name already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmptyName       = errors.New("profile name is empty")
)

// ProfileStore is a create-only registry of named profiles. The first save of
// a name wins; later saves under the same name are rejected and leave the
// stored profile untouched. Profiles are never updated or removed.
type ProfileStore struct {
	mu     sync.RWMutex
	byName map[string]model.NamedProfile
	order  []string
}

func New() *ProfileStore {
	return &ProfileStore{byName: make(map[string]model.NamedProfile)}
}

// Save stores p under p.Name. It returns ErrProfileExists for a taken name.
func (s *ProfileStore) Save(p model.NamedProfile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrEmptyName
	}
	if err := p.Temperatures.Validate(); err != nil {
		return err
	}
	if len(p.Points) == 0 {
		return fmt.Errorf("profile %q has no demand points", p.Name)
	}
	if err := model.ValidateDemand(p.Points); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}

	pts := make([]model.DemandPoint, len(p.Points))
	copy(pts, p.Points)
	p.Points = pts

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[p.Name]; ok {
		return fmt.Errorf("%w: %q", ErrProfileExists, p.Name)
	}
	s.byName[p.Name] = p
	s.order = append(s.order, p.Name)
	return nil
}

// Get returns the profile stored under name.
func (s *ProfileStore) Get(name string) (model.NamedProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[name]
	if !ok {
		return model.NamedProfile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return p, nil
}

// List returns all profiles in the order they were saved.
func (s *ProfileStore) List() []model.NamedProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.NamedProfile, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Names returns the stored names in save order.
func (s *ProfileStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
