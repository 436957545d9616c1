// internal/app/poller_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"homework_notification_bot/internal/domain/homework"
	domainTelegram "homework_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// HomeworkProvider abstracts the homework-status API for the poller.
type HomeworkProvider interface {
	Fetch(ctx context.Context, fromDate int64) (any, error)
}

// Snapshot is a read-only view of the poller state, served by the
// status endpoint and summarized in the daily digest.
type Snapshot struct {
	StartedAt           time.Time `json:"started_at"`
	Polls               int64     `json:"polls"`
	NotificationsSent   int64     `json:"notifications_sent"`
	SendFailures        int64     `json:"send_failures"`
	ConsecutiveFailures int64     `json:"consecutive_failures"`
	LastPollAt          time.Time `json:"last_poll_at"`
	LastPollOK          bool      `json:"last_poll_ok"`
	LastError           string    `json:"last_error,omitempty"`
	LastMessage         string    `json:"last_message,omitempty"`
	FromDate            int64     `json:"from_date"`
}

// PollerService runs the polling loop: fetch homework statuses,
// validate, format the newest submission and notify the configured chat
// when its status changed. It is the only stateful component: it owns
// the poll timestamp and the last-sent message used for deduplication.
type PollerService struct {
	provider HomeworkProvider
	telegram domainTelegram.Client
	chatID   int64
	interval time.Duration
	logger   *logrus.Logger

	// mu guards the fields below; the digest job and the status
	// endpoint read them from their own goroutines.
	mu          sync.Mutex
	fromDate    int64
	lastMessage string
	snap        Snapshot
}

func NewPollerService(
	provider HomeworkProvider,
	telegramClient domainTelegram.Client,
	chatID int64,
	interval time.Duration,
	logger *logrus.Logger,
) *PollerService {
	now := time.Now()
	return &PollerService{
		provider: provider,
		telegram: telegramClient,
		chatID:   chatID,
		interval: interval,
		logger:   logger,
		fromDate: now.Unix(),
		snap:     Snapshot{StartedAt: now, FromDate: now.Unix()},
	}
}

// Run executes poll iterations until ctx is cancelled, sleeping the
// configured interval after every iteration regardless of outcome.
func (p *PollerService) Run(ctx context.Context) {
	p.logger.Infof("Poller started, interval %s", p.interval)
	for {
		p.RunOnce(ctx)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("Poller stopped")
			return
		case <-timer.C:
		}
	}
}

// RunOnce performs a single poll iteration. Every failure is caught
// here, reported to the chat (deduplicated) and logged; nothing inside
// an iteration terminates the loop. The poll timestamp advances to the
// server-reported current_date only when the iteration fully succeeds.
func (p *PollerService) RunOnce(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Polls++
	p.snap.LastPollAt = time.Now()

	raw, err := p.provider.Fetch(ctx, p.fromDate)
	if err != nil {
		p.reportFailure(err)
		return
	}

	homeworks, currentDate, err := homework.CheckResponse(raw)
	if err != nil {
		p.reportFailure(err)
		return
	}

	if len(homeworks) == 0 {
		p.logger.Debugf("No homework updates since %d", p.fromDate)
		p.markSuccess(currentDate)
		return
	}

	// The first entry is the most recent submission.
	message, err := homework.ParseStatus(homeworks[0])
	if err != nil {
		p.reportFailure(err)
		return
	}

	// A failed send leaves the timestamp in place so the same window
	// is retried next cycle instead of dropping the status change.
	if !p.notifyDeduped(message) {
		p.snap.LastPollOK = false
		p.snap.LastError = "notification send failed"
		p.snap.ConsecutiveFailures++
		return
	}
	p.markSuccess(currentDate)
}

// SendDailyDigest sends a short operational summary to the chat. It
// bypasses deduplication: every digest is a distinct report.
func (p *PollerService) SendDailyDigest(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	text := p.digestText(time.Now())
	if err := p.telegram.SendMessage(p.chatID, text, nil); err != nil {
		p.snap.SendFailures++
		return fmt.Errorf("daily digest: %w", err)
	}
	p.logger.Debugf("Bot sent message %q", text)
	return nil
}

// Snapshot returns a copy of the current poller state.
func (p *PollerService) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.snap
	s.LastMessage = p.lastMessage
	s.FromDate = p.fromDate
	return s
}

func (p *PollerService) markSuccess(currentDate int64) {
	p.fromDate = currentDate
	p.snap.LastPollOK = true
	p.snap.LastError = ""
	p.snap.ConsecutiveFailures = 0
}

// reportFailure converts an iteration error into a best-effort chat
// notification. Identical consecutive failures are logged but not
// re-sent. The poll timestamp is left unchanged.
func (p *PollerService) reportFailure(err error) {
	message := fmt.Sprintf("Сбой в работе программы: %s", err)
	p.logger.Errorf("Poll iteration failed: %v", err)

	p.snap.LastPollOK = false
	p.snap.LastError = err.Error()
	p.snap.ConsecutiveFailures++

	p.notifyDeduped(message)
}

// notifyDeduped sends text unless it is identical to the last-sent
// message. Reports whether the chat is up to date: true on a successful
// send or a suppressed duplicate, false when the send itself failed.
// Send failures are swallowed here so they never break the loop.
func (p *PollerService) notifyDeduped(text string) bool {
	if text == p.lastMessage {
		p.logger.Debugf("Suppressing duplicate notification: %q", text)
		return true
	}

	if err := p.telegram.SendMessage(p.chatID, text, nil); err != nil {
		p.logger.Errorf("Failed to send notification: %v", err)
		p.snap.SendFailures++
		return false
	}

	p.logger.Debugf("Bot sent message %q", text)
	p.lastMessage = text
	p.snap.NotificationsSent++
	return true
}

func (p *PollerService) digestText(now time.Time) string {
	state := "работает штатно"
	if !p.snap.LastPollOK && p.snap.ConsecutiveFailures > 0 {
		state = fmt.Sprintf("последний опрос завершился ошибкой (%s)", p.snap.LastError)
	}
	return fmt.Sprintf(
		"Отчёт бота за %s: выполнено опросов: %d, отправлено уведомлений: %d, ошибок отправки: %d. Бот %s.",
		now.Format("2006-01-02"),
		p.snap.Polls,
		p.snap.NotificationsSent,
		p.snap.SendFailures,
		state,
	)
}
