package telango

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// JobCallback is a function type that represents a callback function for running jobs.
//
// A returned error is forwarded to the error handlers.
type JobCallback func(*Context) error

// Job represents a scheduled unit of work.
//
// Jobs are created through the [JobQueue] run methods, the zero value is not usable.
// The scheduling state is guarded by the owning queue.
type Job struct {
	Name     string      // Name identifies the job, multiple jobs may share one name.
	Callback JobCallback // Callback is the function the queue runs.
	Data     any         // Data is an arbitrary payload for the callback.
	ChatID   int64       // ChatID associates the job with a chat, zero for none.
	UserID   int64       // UserID associates the job with a user, zero for none.

	queue    *JobQueue     // queue owns the scheduling state below.
	interval time.Duration // interval between runs, zero for one-shot jobs.
	nextRun  time.Time     // nextRun is the time of the next due check.
	enabled  bool          // enabled gates firing without unscheduling.
	removed  bool          // removed marks the job for collection.
}

// Enable resumes firing of the job.
func (j *Job) Enable() {
	j.queue.Lock()
	defer j.queue.Unlock()

	j.enabled = true
}

// Disable pauses firing of the job while keeping its schedule.
func (j *Job) Disable() {
	j.queue.Lock()
	defer j.queue.Unlock()

	j.enabled = false
}

// Remove unschedules the job for good.
func (j *Job) Remove() {
	j.queue.Lock()
	defer j.queue.Unlock()

	j.removed = true
}

// NextRunAt returns the time the job is due next.
func (j *Job) NextRunAt() time.Time {
	j.queue.RLock()
	defer j.queue.RUnlock()

	return j.nextRun
}

// JobOption is a function type for configuring a job at scheduling time.
type JobOption func(*Job)

// WithJobChatID associates the job with a chat.
// The job context then exposes the chat data of said chat.
func WithJobChatID(chatID int64) JobOption {
	return func(j *Job) {
		j.ChatID = chatID
	}
}

// WithJobUserID associates the job with a user.
// The job context then exposes the user data of said user.
func WithJobUserID(userID int64) JobOption {
	return func(j *Job) {
		j.UserID = userID
	}
}

// WithJobData attaches an arbitrary payload to the job.
func WithJobData(data any) JobOption {
	return func(j *Job) {
		j.Data = data
	}
}

// JobQueue runs scheduled jobs on a coarse ticker.
//
// Due jobs fire on their own goroutines, a slow job does not delay the
// others. Firing times are accurate to one tick.
type JobQueue struct {
	sync.RWMutex
	Tick time.Duration // Tick is the scheduling resolution, set before Start.

	app     *Application
	jobs    []*Job
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewJobQueue returns a new `JobQueue` bound to the application.
func NewJobQueue(app *Application) *JobQueue {
	return &JobQueue{
		Tick: JOBQUEUE_TICK,
		app:  app,
	}
}

// Start launches the scheduling loop.
//
// Args:
//   - ctx: The context bounding the loop, nil means [context.Background].
//
// Returns:
//   - error: [ErrAlreadyRunning] when the queue is already started.
func (jq *JobQueue) Start(ctx context.Context) error {
	jq.Lock()
	defer jq.Unlock()

	if jq.running {
		return ErrAlreadyRunning
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if jq.Tick <= 0 {
		jq.Tick = JOBQUEUE_TICK
	}
	ctx, jq.cancel = context.WithCancel(ctx)
	jq.running = true

	jq.wg.Add(1)
	go jq.loop(ctx)

	return nil
}

// Stop ends the scheduling loop and waits for in-flight jobs to return.
//
// Returns:
//   - error: [ErrNotRunning] when the queue is not started.
func (jq *JobQueue) Stop() error {
	jq.Lock()
	if !jq.running {
		jq.Unlock()
		return ErrNotRunning
	}
	jq.running = false
	cancel := jq.cancel
	jq.Unlock()

	cancel()
	jq.wg.Wait()

	return nil
}

// loop wakes up once per tick and fires the due jobs.
func (jq *JobQueue) loop(ctx context.Context) {
	defer jq.wg.Done()

	ticker := time.NewTicker(jq.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, job := range jq.collectDue(now) {
				jq.wg.Add(1)
				go jq.execute(ctx, job)
			}
		}
	}
}

// collectDue advances the schedule and returns the jobs due at now.
// One-shot jobs are unscheduled, repeating jobs catch up past now so a
// long stall does not burst-fire them.
func (jq *JobQueue) collectDue(now time.Time) (due []*Job) {
	jq.Lock()
	defer jq.Unlock()

	kept := jq.jobs[:0]
	for _, job := range jq.jobs {
		if job.removed {
			continue
		}
		if job.enabled && !job.nextRun.After(now) {
			due = append(due, job)
			if job.interval <= 0 {
				job.removed = true
				continue
			}
			for !job.nextRun.After(now) {
				job.nextRun = job.nextRun.Add(job.interval)
			}
		}
		kept = append(kept, job)
	}
	jq.jobs = kept

	return
}

// execute runs a single due job and refreshes the persisted data afterwards.
func (jq *JobQueue) execute(ctx context.Context, job *Job) {
	defer jq.wg.Done()

	context := NewContextFromJob(job, jq.app)

	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				var ok bool
				if err, ok = rec.(error); !ok {
					err = fmt.Errorf("job %q panicked: %v", job.Name, rec)
				}
			}
		}()

		return job.Callback(context)
	}()

	if refreshErr := context.RefreshData(ctx); refreshErr != nil {
		log.Error().Str("Job", job.Name).Err(refreshErr).Msg("Failed to refresh the persisted data.")
	}
	if err != nil {
		jq.app.DispatchError(nil, err, job, job.Callback)
	}
}

// schedule enables the job and hands it to the queue.
func (jq *JobQueue) schedule(job *Job, opts []JobOption) *Job {
	for _, opt := range opts {
		opt(job)
	}

	jq.Lock()
	defer jq.Unlock()

	job.queue = jq
	job.enabled = true
	jq.jobs = append(jq.jobs, job)

	return job
}

// RunOnce schedules a job that fires a single time after the delay.
//
// Args:
//   - name: The job name.
//   - callback: The function to run.
//   - delay: How long to wait before the run.
//   - opts: Optional chat, user and payload bindings.
//
// Returns:
//   - *Job: The scheduled job.
func (jq *JobQueue) RunOnce(name string, callback JobCallback, delay time.Duration, opts ...JobOption) *Job {
	return jq.schedule(&Job{
		Name:     name,
		Callback: callback,
		nextRun:  time.Now().Add(delay),
	}, opts)
}

// RunRepeating schedules a job that fires every interval, starting one
// interval from now.
//
// Args:
//   - name: The job name.
//   - callback: The function to run.
//   - interval: The time between runs.
//   - opts: Optional chat, user and payload bindings.
//
// Returns:
//   - *Job: The scheduled job.
func (jq *JobQueue) RunRepeating(name string, callback JobCallback, interval time.Duration, opts ...JobOption) *Job {
	return jq.schedule(&Job{
		Name:     name,
		Callback: callback,
		interval: interval,
		nextRun:  time.Now().Add(interval),
	}, opts)
}

// RunDaily schedules a job that fires every day at the given wall clock
// time, starting at its next occurrence.
//
// Args:
//   - name: The job name.
//   - callback: The function to run.
//   - hour: The hour of the day, 0 to 23.
//   - minute: The minute of the hour, 0 to 59.
//   - opts: Optional chat, user and payload bindings.
//
// Returns:
//   - *Job: The scheduled job.
func (jq *JobQueue) RunDaily(name string, callback JobCallback, hour, minute int, opts ...JobOption) *Job {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}

	return jq.schedule(&Job{
		Name:     name,
		Callback: callback,
		interval: 24 * time.Hour,
		nextRun:  next,
	}, opts)
}

// Jobs returns the scheduled jobs.
func (jq *JobQueue) Jobs() []*Job {
	jq.RLock()
	defer jq.RUnlock()

	jobs := make([]*Job, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		if !job.removed {
			jobs = append(jobs, job)
		}
	}

	return jobs
}

// JobsByName returns the scheduled jobs carrying the given name.
func (jq *JobQueue) JobsByName(name string) (jobs []*Job) {
	jq.RLock()
	defer jq.RUnlock()

	for _, job := range jq.jobs {
		if !job.removed && job.Name == name {
			jobs = append(jobs, job)
		}
	}

	return
}
