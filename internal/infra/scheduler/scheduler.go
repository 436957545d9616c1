package scheduler

import (
	"context"
	"time"

	"homework_notification_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DigestScheduler runs the daily operational digest on a cron spec.
type DigestScheduler struct {
	cronEngine     *cron.Cron
	poller         *app.PollerService
	logger         *logrus.Logger
	cronSpecDigest string
}

func NewDigestScheduler(poller *app.PollerService, logger *logrus.Logger, cronSpecDigest string) *DigestScheduler {
	return &DigestScheduler{
		cronEngine:     cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		poller:         poller,
		logger:         logger,
		cronSpecDigest: cronSpecDigest,
	}
}

func (s *DigestScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecDigest, func() {
		s.logger.Debug("Cron job triggered for daily digest")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.poller.SendDailyDigest(ctx); err != nil {
			s.logger.Errorf("Error sending daily digest: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("Digest scheduler started with spec %q", s.cronSpecDigest)
	return nil
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // Waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped")
}
