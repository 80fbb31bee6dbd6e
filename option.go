package telango

// Option represents a configurable parameter for the Application.
type Option func(*Application)

// WithBot sets the Bot API client used by the application.
//
// Without this option the application builds an [ExtBot] from its
// configuration during Initialize.
//
// Args:
//   - bot: The bot to use for the application.
//
// Returns:
//   - Option: A function that applies the specified bot to the Application.
func WithBot(bot Bot) Option {
	return func(a *Application) {
		a.bot = bot
	}
}

// WithPersistence enables the persistence layer for the application.
//
// Args:
//   - persistence: The persistence layer to use for the application.
//
// Returns:
//   - Option: A function that applies the specified persistence layer to the Application.
func WithPersistence(persistence Persistence) Option {
	return func(a *Application) {
		a.persistence = persistence
	}
}

// WithJobQueue sets the job queue used by the application.
//
// The queue is rebound to the application, so a custom scheduling
// resolution carries over while the jobs run against this application.
//
// Args:
//   - jobQueue: The job queue to use for the application.
//
// Returns:
//   - Option: A function that applies the specified job queue to the Application.
func WithJobQueue(jobQueue *JobQueue) Option {
	return func(a *Application) {
		jobQueue.app = a
		a.jobQueue = jobQueue
	}
}

// WithUpdateQueueSize overrides the capacity of the update queue.
//
// Args:
//   - size: The number of updates the queue buffers before the receivers block.
//
// Returns:
//   - Option: A function that applies the specified capacity to the Application.
func WithUpdateQueueSize(size int) Option {
	return func(a *Application) {
		a.Config.UpdateQueueSize = size
	}
}

// WithDebug enables debug mode for the application.
//
// When debug mode is enabled, the application lowers the global log level
// so the debug records become visible.
//
// Returns:
//   - Option: A function that enables debug mode for the Application.
func WithDebug() Option {
	return func(a *Application) {
		a.Config.Debug = true
	}
}
