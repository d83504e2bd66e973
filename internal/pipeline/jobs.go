package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notes"
)

// JobStatus represents the state of a notebook sync job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusChecking  JobStatus = "checking"
	StatusListing   JobStatus = "listing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusSkipped   JobStatus = "skipped" // account unchanged since the last sync
)

// Job tracks one sync of one notebook.
type Job struct {
	mu sync.Mutex

	ID         string    `json:"job_id"`
	NotebookID string    `json:"notebook_id"`
	Mode       enml.Mode `json:"mode"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Since     int64     `json:"since"`
	Cursor    int64     `json:"cursor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	notes  []notes.Note
	errors []string
}

// NewJob returns a queued job for notebookID.
func NewJob(notebookID string, mode enml.Mode) *Job {
	now := time.Now()
	return &Job{
		ID:         generateULID(),
		NotebookID: notebookID,
		Mode:       mode,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		idle := now.Sub(job.UpdatedAt)
		job.mu.Unlock()
		if idle > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetResult stores the notes found and the cursor they advance to.
func (j *Job) SetResult(since, cursor int64, found []notes.Note) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Since = since
	j.Cursor = cursor
	j.notes = found
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string       `json:"job_id"`
	NotebookID string       `json:"notebook_id"`
	Mode       enml.Mode    `json:"mode"`
	Status     JobStatus    `json:"status"`
	Phase      string       `json:"phase"`
	Since      int64        `json:"since"`
	Cursor     int64        `json:"cursor"`
	Notes      []notes.Note `json:"notes"`
	Errors     []string     `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	found := append([]notes.Note{}, j.notes...)
	return JobSnapshot{
		ID:         j.ID,
		NotebookID: j.NotebookID,
		Mode:       j.Mode,
		Status:     j.Status,
		Phase:      j.Phase,
		Since:      j.Since,
		Cursor:     j.Cursor,
		Notes:      found,
		Errors:     errs,
	}
}
