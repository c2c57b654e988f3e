package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queue is the ordered in-memory job list. Position in the slice is the
// dispatch order; byPath gives O(1) duplicate detection on enqueue.
type Queue struct {
	jobs   []*Job
	byID   map[string]*Job
	byPath map[string]*Job
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		byID:   make(map[string]*Job),
		byPath: make(map[string]*Job),
	}
}

// Enqueue appends a pending job for sourcePath. When the path is already
// queued the existing job is returned with added=false and nothing changes;
// repeat submissions of the same file are expected and harmless.
func (q *Queue) Enqueue(sourcePath string) (job *Job, added bool) {
	if existing, ok := q.byPath[sourcePath]; ok {
		return existing, false
	}
	now := time.Now().UTC()
	job = &Job{
		ID:          uuid.NewString(),
		SourcePath:  sourcePath,
		DisplayName: InferDisplayName(sourcePath),
		Kind:        KindForPath(sourcePath),
		Status:      StatusPending,
		EnqueuedAt:  now,
		UpdatedAt:   now,
	}
	q.jobs = append(q.jobs, job)
	q.byID[job.ID] = job
	q.byPath[job.SourcePath] = job
	return job, true
}

// Get returns the job with the given ID, or nil.
func (q *Queue) Get(id string) *Job {
	return q.byID[id]
}

// FindByPath returns the job for sourcePath, or nil. Analysis results address
// jobs this way because they can arrive before, during, or after a batch.
func (q *Queue) FindByPath(sourcePath string) *Job {
	return q.byPath[sourcePath]
}

// Remove deletes the job with the given ID and returns it, or nil when the ID
// is unknown.
func (q *Queue) Remove(id string) *Job {
	job, ok := q.byID[id]
	if !ok {
		return nil
	}
	for i, candidate := range q.jobs {
		if candidate.ID == id {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			break
		}
	}
	delete(q.byID, id)
	delete(q.byPath, job.SourcePath)
	return job
}

// Reorder moves the job at index from to index to, shifting everything in
// between. Indexes are positions in the current order.
func (q *Queue) Reorder(from, to int) error {
	n := len(q.jobs)
	if from < 0 || from >= n {
		return fmt.Errorf("reorder: from index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("reorder: to index %d out of range [0,%d)", to, n)
	}
	if from == to {
		return nil
	}
	job := q.jobs[from]
	rest := append(q.jobs[:from], q.jobs[from+1:]...)
	q.jobs = append(rest[:to], append([]*Job{job}, rest[to:]...)...)
	return nil
}

// NextPending returns the first job in queue order with status pending.
func (q *Queue) NextPending() *Job {
	return q.FirstWithStatus(StatusPending)
}

// FirstWithStatus returns the first job in queue order with the given status.
func (q *Queue) FirstWithStatus(status Status) *Job {
	for _, job := range q.jobs {
		if job.Status == status {
			return job
		}
	}
	return nil
}

// Jobs returns the live jobs in queue order. Callers must not retain the
// slice across queue mutations.
func (q *Queue) Jobs() []*Job {
	return q.jobs
}

// Snapshot returns deep copies of all jobs in queue order, safe to hand to
// transports and renderers.
func (q *Queue) Snapshot() []Job {
	out := make([]Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, job.Clone())
	}
	return out
}

// Position returns the zero-based queue position of the job, or -1.
func (q *Queue) Position(id string) int {
	for i, job := range q.jobs {
		if job.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Stats returns job counts per status.
func (q *Queue) Stats() map[Status]int {
	stats := make(map[Status]int, len(allStatuses))
	for _, job := range q.jobs {
		stats[job.Status]++
	}
	return stats
}

// ResetTerminal flips done and error jobs back to pending and returns how
// many were reset. Starting a fresh batch re-runs earlier results; resuming
// after the queue drains mid-run must not, so only the explicit start path
// calls this.
func (q *Queue) ResetTerminal() int {
	reset := 0
	for _, job := range q.jobs {
		if !job.IsTerminal() {
			continue
		}
		job.Status = StatusPending
		job.ProgressPercent = 0
		job.ErrorMessage = ""
		job.touch()
		reset++
	}
	return reset
}
