package telango

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/n0h4rt/telango/models"
	"github.com/n0h4rt/telango/utils"
)

// Updater fetches updates from the Bot API and feeds them into the update queue.
//
// It runs in one of two modes: long polling via the getUpdates method, or a
// webhook server receiving pushed updates. An updater is started once, in
// one mode.
type Updater struct {
	bot     Bot
	ext     *ExtBot
	queue   chan<- *models.Update
	offset  int64
	backoff *Backoff
	server  *http.Server
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewUpdater returns a new `Updater` feeding the given queue.
func NewUpdater(bot Bot, queue chan<- *models.Update) *Updater {
	ext, _ := bot.(*ExtBot)

	return &Updater{
		bot:     bot,
		ext:     ext,
		queue:   queue,
		backoff: NewBackoff(BASE_BACKOFF_DUR, MAX_BACKOFF_DUR),
	}
}

// preprocess lets the bot resolve the update before it enters the queue.
func (u *Updater) preprocess(update *models.Update) {
	if u.ext != nil {
		u.ext.ProcessUpdate(update)
	}
}

// StartPolling launches the long-polling loop.
//
// A webhook left over from an earlier run blocks getUpdates, so any
// registered webhook is deleted first.
//
// Args:
//   - ctx: The context bounding the loop, nil means [context.Background].
//   - timeout: The long-poll window, zero for short polling.
//
// Returns:
//   - error: [ErrAlreadyRunning] when the updater is already started.
func (u *Updater) StartPolling(ctx context.Context, timeout time.Duration) error {
	if u.cancel != nil {
		return ErrAlreadyRunning
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := u.bot.DeleteWebhook(ctx, false); err != nil {
		log.Warn().Err(err).Msg("Failed to delete the webhook.")
	}

	ctx, u.cancel = context.WithCancel(ctx)

	u.wg.Add(1)
	go u.pollLoop(ctx, timeout)

	return nil
}

// pollLoop fetches update batches until the context ends.
// Fetch errors back off exponentially, a success resets the backoff.
func (u *Updater) pollLoop(ctx context.Context, timeout time.Duration) {
	defer u.wg.Done()

	for ctx.Err() == nil {
		updates, err := u.bot.GetUpdates(ctx, u.offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("Failed to fetch updates.")
			if u.backoff.Sleep(ctx) {
				return
			}
			continue
		}
		u.backoff.Reset()

		for _, update := range updates {
			u.offset = utils.Max(u.offset, update.UpdateID+1)
			u.preprocess(update)

			select {
			case u.queue <- update:
			case <-ctx.Done():
				return
			}
		}
	}
}

// StartWebhook registers the webhook with the Bot API and launches a local
// server receiving the pushed updates.
//
// The route path defaults to the bot token, which keeps the endpoint
// unguessable as the Bot API manual suggests.
//
// Args:
//   - ctx: The context bounding the server, nil means [context.Background].
//   - config: The webhook URL, listen address and route path.
//
// Returns:
//   - error: [ErrAlreadyRunning] when the updater is already started, or an
//     error if the webhook registration fails.
func (u *Updater) StartWebhook(ctx context.Context, config *Config) error {
	if u.cancel != nil {
		return ErrAlreadyRunning
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path := config.WebhookPath
	if path == "" {
		path = config.Token
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.POST(path, u.handleWebhook)

	u.server = &http.Server{
		Addr:    config.WebhookListen,
		Handler: router,
	}

	if err := u.bot.SetWebhook(ctx, config.WebhookURL); err != nil {
		return err
	}

	ctx, u.cancel = context.WithCancel(ctx)

	u.wg.Add(2)
	go u.serve()
	go u.shutdownOnDone(ctx)

	return nil
}

// handleWebhook receives a single pushed update.
// The push must not block on a full queue, the Bot API retries dropped updates.
func (u *Updater) handleWebhook(c *gin.Context) {
	update := &models.Update{}
	if err := c.ShouldBindJSON(update); err != nil {
		log.Warn().Err(err).Msg("Received an undecodable update.")
		c.Status(http.StatusBadRequest)

		return
	}

	u.preprocess(update)

	select {
	case u.queue <- update:
	default:
		log.Warn().Int64("UpdateID", update.UpdateID).Msg("The update queue is full, dropping the update.")
	}

	c.Status(http.StatusOK)
}

// serve runs the webhook server until it is shut down.
func (u *Updater) serve() {
	defer u.wg.Done()

	if err := u.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("The webhook server stopped unexpectedly.")
	}
}

// shutdownOnDone drains the webhook server once the context ends.
func (u *Updater) shutdownOnDone(ctx context.Context) {
	defer u.wg.Done()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := u.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down the webhook server.")
	}
}

// Stop ends the running mode and waits for its goroutines to return.
// Stopping an updater that is not started is a no-op.
func (u *Updater) Stop() {
	if u.cancel == nil {
		return
	}

	u.cancel()
	u.wg.Wait()
	u.cancel = nil
}
