package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"homework_notification_bot/internal/domain/homework"
	domainTelegram "homework_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const testChatID int64 = 424242

type fakeProvider struct {
	response any
	err      error
	calls    []int64
}

func (f *fakeProvider) Fetch(ctx context.Context, fromDate int64) (any, error) {
	f.calls = append(f.calls, fromDate)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeTelegramClient struct {
	sent    []string
	chatIDs []int64
	err     error
}

func (f *fakeTelegramClient) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if f.err != nil {
		return f.err
	}
	f.chatIDs = append(f.chatIDs, recipientChatID)
	f.sent = append(f.sent, text)
	return nil
}

func apiResponse(currentDate int64, submissions ...map[string]any) map[string]any {
	homeworks := make([]any, 0, len(submissions))
	for _, s := range submissions {
		homeworks = append(homeworks, s)
	}
	return map[string]any{
		"homeworks":    homeworks,
		"current_date": float64(currentDate),
	}
}

func submission(name, status string) map[string]any {
	return map[string]any{
		"homework_name": name,
		"status":        status,
	}
}

func setupPoller(provider *fakeProvider, client *fakeTelegramClient) *PollerService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewPollerService(provider, client, testChatID, 10*time.Millisecond, logger)
}

func TestRunOnce_StatusChangeNotified(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000, submission("proj1", "approved"))}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	startFromDate := poller.Snapshot().FromDate
	poller.RunOnce(context.Background())

	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0], "proj1")
	assert.Contains(t, client.sent[0], "Работа проверена: ревьюеру всё понравилось. Ура!")
	assert.Equal(t, []int64{testChatID}, client.chatIDs)

	require.Len(t, provider.calls, 1)
	assert.Equal(t, startFromDate, provider.calls[0])

	snap := poller.Snapshot()
	assert.Equal(t, int64(1000), snap.FromDate)
	assert.True(t, snap.LastPollOK)
	assert.Equal(t, int64(1), snap.NotificationsSent)
}

func TestRunOnce_DuplicateMessageSentOnce(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000, submission("proj1", "approved"))}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	poller.RunOnce(context.Background())
	poller.RunOnce(context.Background())

	assert.Len(t, client.sent, 1)
	assert.Equal(t, int64(2), poller.Snapshot().Polls)
}

func TestRunOnce_NewStatusAfterDuplicateNotified(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000, submission("proj1", "reviewing"))}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	poller.RunOnce(context.Background())
	poller.RunOnce(context.Background())
	provider.response = apiResponse(2000, submission("proj1", "approved"))
	poller.RunOnce(context.Background())

	require.Len(t, client.sent, 2)
	assert.Contains(t, client.sent[0], "Работа взята на проверку ревьюером.")
	assert.Contains(t, client.sent[1], "Работа проверена: ревьюеру всё понравилось. Ура!")
	assert.Equal(t, int64(2000), poller.Snapshot().FromDate)
}

func TestRunOnce_EmptyListIsQuietIteration(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1500)}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	poller.RunOnce(context.Background())

	assert.Empty(t, client.sent)
	snap := poller.Snapshot()
	assert.True(t, snap.LastPollOK)
	assert.Equal(t, int64(1500), snap.FromDate)
}

func TestRunOnce_APIFailureReportedAndRetriedWithSameWindow(t *testing.T) {
	apiErr := fmt.Errorf("api error: unexpected status code: 503")
	provider := &fakeProvider{err: apiErr}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	startFromDate := poller.Snapshot().FromDate
	poller.RunOnce(context.Background())

	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0], "Сбой в работе программы")
	assert.Contains(t, client.sent[0], "unexpected status code: 503")

	snap := poller.Snapshot()
	assert.Equal(t, startFromDate, snap.FromDate)
	assert.False(t, snap.LastPollOK)
	assert.Equal(t, int64(1), snap.ConsecutiveFailures)

	// Next cycle queries the same window again.
	poller.RunOnce(context.Background())
	require.Len(t, provider.calls, 2)
	assert.Equal(t, startFromDate, provider.calls[1])
}

func TestRunOnce_RecurringFailureReportedOnce(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	poller.RunOnce(context.Background())
	poller.RunOnce(context.Background())
	poller.RunOnce(context.Background())

	assert.Len(t, client.sent, 1)
	assert.Equal(t, int64(3), poller.Snapshot().ConsecutiveFailures)
}

func TestRunOnce_UnknownStatusReportedOnce(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000, submission("proj1", "archived"))}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	startFromDate := poller.Snapshot().FromDate
	poller.RunOnce(context.Background())
	poller.RunOnce(context.Background())

	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0], "Сбой в работе программы")
	assert.Contains(t, client.sent[0], "archived")
	assert.Equal(t, startFromDate, poller.Snapshot().FromDate)
}

func TestRunOnce_SchemaFailureReported(t *testing.T) {
	provider := &fakeProvider{response: map[string]any{"current_date": float64(1000)}}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	poller.RunOnce(context.Background())

	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0], homework.ErrSchema.Error())
}

func TestRunOnce_SendFailureDoesNotAdvanceWindow(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000, submission("proj1", "approved"))}
	client := &fakeTelegramClient{err: fmt.Errorf("%w: 502", domainTelegram.ErrSend)}
	poller := setupPoller(provider, client)

	startFromDate := poller.Snapshot().FromDate
	poller.RunOnce(context.Background())

	assert.Empty(t, client.sent)
	snap := poller.Snapshot()
	assert.Equal(t, startFromDate, snap.FromDate)
	assert.Equal(t, int64(1), snap.SendFailures)

	// Once the transport recovers the notification goes out.
	client.err = nil
	poller.RunOnce(context.Background())
	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0], "proj1")
	assert.Equal(t, int64(1000), poller.Snapshot().FromDate)
}

func TestSendDailyDigest(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000, submission("proj1", "approved"))}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	poller.RunOnce(context.Background())
	require.NoError(t, poller.SendDailyDigest(context.Background()))

	require.Len(t, client.sent, 2)
	digest := client.sent[1]
	assert.Contains(t, digest, "Отчёт бота за")
	assert.Contains(t, digest, "выполнено опросов: 1")
	assert.Contains(t, digest, "отправлено уведомлений: 1")
}

func TestSendDailyDigest_BypassesDeduplication(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000)}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	require.NoError(t, poller.SendDailyDigest(context.Background()))
	require.NoError(t, poller.SendDailyDigest(context.Background()))

	assert.Len(t, client.sent, 2)
}

func TestSendDailyDigest_SendFailure(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000)}
	client := &fakeTelegramClient{err: domainTelegram.ErrSend}
	poller := setupPoller(provider, client)

	err := poller.SendDailyDigest(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainTelegram.ErrSend)
	assert.Equal(t, int64(1), poller.Snapshot().SendFailures)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	provider := &fakeProvider{response: apiResponse(1000)}
	client := &fakeTelegramClient{}
	poller := setupPoller(provider, client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return poller.Snapshot().Polls >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
