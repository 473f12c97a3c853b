// Package jobstore keeps the process-wide registries of ingestion and
// clip-render jobs. Entries are volatile: they live for the process
// lifetime and are never evicted by the core.
package jobstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/forPelevin/viralcut/internal/types"
)

// Store is a keyed snapshot registry for both job kinds. Writes replace
// the whole entry (last write wins); reads return copies, so concurrent
// readers only ever observe one of the sequential snapshots. Exactly one
// orchestrator goroutine owns a given id for its lifetime.
type Store struct {
	mu         sync.RWMutex
	ingestions map[string]types.IngestionJob
	clipJobs   map[string]types.ClipJob
}

func New() *Store {
	return &Store{
		ingestions: make(map[string]types.IngestionJob),
		clipJobs:   make(map[string]types.ClipJob),
	}
}

// NewID generates a job identifier. Lookup is by id only; entries are
// never enumerated.
func NewID() string { return uuid.NewString() }

func (s *Store) GetIngestion(id string) (types.IngestionJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.ingestions[id]
	return job, ok
}

func (s *Store) SetIngestion(job types.IngestionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingestions[job.ID] = job
}

func (s *Store) GetClipJob(id string) (types.ClipJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.clipJobs[id]
	return job, ok
}

func (s *Store) SetClipJob(job types.ClipJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipJobs[job.ID] = job
}
