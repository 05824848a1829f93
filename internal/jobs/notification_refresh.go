// File: internal/jobs/notification_refresh.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"sipaling_preloved_client/internal/config"
	"sipaling_preloved_client/internal/notification"
	"sipaling_preloved_client/internal/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NotificationRefreshJob periodically reloads the notification inbox so the
// unread badge stays current without the user pulling to refresh.
type NotificationRefreshJob struct {
	viewModel     *notification.ViewModel
	sessions      *session.Store
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewNotificationRefreshJob creates the refresh job.
func NewNotificationRefreshJob(
	viewModel *notification.ViewModel,
	sessions *session.Store,
	logger *zap.Logger,
	cfg *config.Config,
) *NotificationRefreshJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &NotificationRefreshJob{
		viewModel:     viewModel,
		sessions:      sessions,
		logger:        logger.Named("NotificationRefreshJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *NotificationRefreshJob) SetupAndStart() error {
	jobSpec := j.cfg.NotificationRefreshSchedule
	if jobSpec == "" {
		j.logger.Warn("Notification refresh schedule not defined (NOTIFICATION_REFRESH_SCHEDULE). Job will not run.")
		return nil // Not a fatal error, just won't run
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule notification refresh job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Notification refresh job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start() // Start the scheduler in the background
	return nil
}

// runJob is the actual work performed by the cron job. Skipped entirely
// while logged out: the inbox requires a session.
func (j *NotificationRefreshJob) runJob() {
	if !j.sessions.IsAuthenticated() {
		j.logger.Debug("Skipping notification refresh, no active session")
		return
	}

	j.logger.Debug("Refreshing notifications...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	j.viewModel.Load(ctx)

	state := j.viewModel.Snapshot()
	if state.ErrorMessage != "" {
		j.logger.Warn("Notification refresh run failed", zap.String("error", state.ErrorMessage))
	} else {
		j.logger.Debug("Notification refresh run completed", zap.Int("unread", state.UnreadCount))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *NotificationRefreshJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping notification refresh scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Notification refresh scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Notification refresh scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
