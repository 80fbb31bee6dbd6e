package telango

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/n0h4rt/telango/models"
)

func TestUpdater_Polling(t *testing.T) {
	bot := &fakeBot{
		batches: [][]*models.Update{{
			{UpdateID: 5, Message: &models.Message{MessageID: 1, Chat: &models.Chat{ID: 10, Type: models.CHAT_PRIVATE}, Text: "first"}},
			{UpdateID: 3, Message: &models.Message{MessageID: 2, Chat: &models.Chat{ID: 10, Type: models.CHAT_PRIVATE}, Text: "second"}},
		}},
	}
	queue := make(chan *models.Update, 8)
	updater := NewUpdater(bot, queue)

	assert.NoError(t, updater.StartPolling(context.Background(), 0))

	// Assert that starting twice is refused
	assert.ErrorIs(t, updater.StartPolling(context.Background(), 0), ErrAlreadyRunning)

	// Assert that the batch arrives on the queue in order
	first := <-queue
	second := <-queue
	assert.Equal(t, int64(5), first.UpdateID)
	assert.Equal(t, int64(3), second.UpdateID)

	updater.Stop()

	// Assert that the second poll asked for the updates after the newest seen
	offsets := bot.polledOffsets()
	assert.GreaterOrEqual(t, len(offsets), 2)
	assert.Equal(t, int64(0), offsets[0])
	assert.Equal(t, int64(6), offsets[1], "the offset should advance past the highest update")
}

func TestUpdater_PollingStopsDuringBackoff(t *testing.T) {
	bot := &fakeBot{fail: errors.New("api is down")}
	queue := make(chan *models.Update, 8)
	updater := NewUpdater(bot, queue)

	assert.NoError(t, updater.StartPolling(context.Background(), 0))

	// Give the loop time to fail and enter the backoff sleep
	assert.Eventually(t, func() bool { return len(bot.polledOffsets()) >= 1 }, time.Second, 5*time.Millisecond)

	// Assert that the stop interrupts the sleep promptly
	done := make(chan struct{})
	go func() {
		updater.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("the updater did not stop during the backoff sleep")
	}

	// Assert that a stopped updater can be stopped again
	assert.NotPanics(t, updater.Stop)
}

func TestUpdater_HandleWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	queue := make(chan *models.Update, 8)
	updater := NewUpdater(&fakeBot{}, queue)

	// Push one update through the webhook route
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(
		`{"update_id":5,"message":{"message_id":1,"date":1,"chat":{"id":10,"type":"private"},"text":"hello"}}`))
	c.Request.Header.Set("Content-Type", "application/json")

	updater.handleWebhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, queue, 1)
	update := <-queue
	assert.Equal(t, int64(5), update.UpdateID)
	assert.Equal(t, "hello", update.Message.Text)
}

func TestUpdater_HandleWebhookBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	queue := make(chan *models.Update, 8)
	updater := NewUpdater(&fakeBot{}, queue)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	updater.handleWebhook(c)
	c.Writer.WriteHeaderNow() // flush the buffered status, normally done by the gin engine

	// Assert that the push was rejected and nothing was queued
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, queue, 0)
}

func TestUpdater_HandleWebhookFullQueue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// A queue with room for a single update, already taken
	queue := make(chan *models.Update, 1)
	queue <- &models.Update{UpdateID: 1}
	updater := NewUpdater(&fakeBot{}, queue)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(`{"update_id":2}`))
	c.Request.Header.Set("Content-Type", "application/json")

	updater.handleWebhook(c)

	// Assert that the update was dropped instead of blocking the push
	assert.Equal(t, http.StatusOK, w.Code, "the Bot API retries dropped updates, the push must not fail")
	assert.Len(t, queue, 1)
	queued := <-queue
	assert.Equal(t, int64(1), queued.UpdateID)
}

func TestUpdater_WebhookRegistrationFailure(t *testing.T) {
	cause := errors.New("registration refused")
	queue := make(chan *models.Update, 8)
	updater := NewUpdater(&fakeBot{fail: cause}, queue)

	config := &Config{Token: "42:TEST", WebhookURL: "https://example.org/hook", WebhookListen: "127.0.0.1:0"}

	// Assert that a failing registration leaves the updater stopped
	err := updater.StartWebhook(context.Background(), config)
	assert.ErrorIs(t, err, cause)
	assert.NotPanics(t, updater.Stop, "a failed start should leave nothing to stop")
}
