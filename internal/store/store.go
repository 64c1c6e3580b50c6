// Package store keeps the dataset currently served by the dashboard.
package store

import (
	"sync"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// Source names where a dataset came from.
type Source string

const (
	SourceGenerator Source = "generator"
	SourceMongo     Source = "mongo"
	SourceMQTT      Source = "mqtt"
	SourceFile      Source = "file"
)

// Info describes the loaded dataset.
type Info struct {
	Source   Source               `json:"source"`
	LoadedAt time.Time            `json:"loaded_at"`
	Counts   models.DatasetCounts `json:"counts"`
}

// Store holds one dataset at a time. Readers get the snapshot that was
// current when they asked; Replace swaps the whole dataset at once.
type Store struct {
	mu   sync.RWMutex
	data models.Dataset
	info Info
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Replace installs a new dataset.
func (s *Store) Replace(data models.Dataset, source Source, loadedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.info = Info{Source: source, LoadedAt: loadedAt, Counts: data.Counts()}
}

// Dataset returns the current dataset. Callers must treat it as read-only.
func (s *Store) Dataset() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Info returns metadata about the current dataset.
func (s *Store) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}
