package storage

import (
	"sync"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/models"
)

// JobStore keeps serve-mode job records in memory. Job state lives only for
// the lifetime of the process, like the web interface it replaces.
type JobStore struct {
	jobs map[string]*models.JobRecord
	mu   sync.RWMutex
}

func New() *JobStore {
	return &JobStore{
		jobs: make(map[string]*models.JobRecord),
	}
}

func (s *JobStore) Get(jobID string) (*models.JobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

func (s *JobStore) Set(jobID string, job *models.JobRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = job
}

func (s *JobStore) GetAll() []*models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.JobRecord, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job)
	}
	return result
}

func (s *JobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
