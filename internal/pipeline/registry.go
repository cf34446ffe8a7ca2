package pipeline

import (
	"sort"
	"sync"

	"vidconv/internal/model"
)

// Registry tracks jobs for as long as they run. It is not a history: a
// terminated job is removed and lookups for it report not found.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]model.Job)}
}

func (r *Registry) add(j model.Job) {
	r.mu.Lock()
	r.jobs[j.TaskID] = j
	r.mu.Unlock()
}

func (r *Registry) update(j model.Job) {
	r.mu.Lock()
	if _, ok := r.jobs[j.TaskID]; ok {
		r.jobs[j.TaskID] = j
	}
	r.mu.Unlock()
}

func (r *Registry) remove(taskID string) {
	r.mu.Lock()
	delete(r.jobs, taskID)
	r.mu.Unlock()
}

// Get returns a snapshot of the job, or false once it has terminated.
func (r *Registry) Get(taskID string) (model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[taskID]
	return j, ok
}

// List returns snapshots of all active jobs ordered by start time.
func (r *Registry) List() []model.Job {
	r.mu.RLock()
	out := make([]model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, k int) bool { return out[i].StartedAt.Before(out[k].StartedAt) })
	return out
}

// Len reports the number of active jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
