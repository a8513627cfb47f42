package jobs

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"cragbase-api/models"
)

// NotificationCleanupJob periodically purges read notifications older than
// the retention window
type NotificationCleanupJob struct {
	db        *gorm.DB
	retention time.Duration
	ticker    *time.Ticker
	done      chan bool
}

func NewNotificationCleanupJob(db *gorm.DB, interval, retention time.Duration) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		db:        db,
		retention: retention,
		ticker:    time.NewTicker(interval),
		done:      make(chan bool),
	}
}

// Start begins the cleanup job
func (j *NotificationCleanupJob) Start() {
	log.Info().Msg("notification cleanup job started")

	go func() {
		// Run immediately on start
		j.cleanup()

		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				log.Info().Msg("notification cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the cleanup job
func (j *NotificationCleanupJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *NotificationCleanupJob) cleanup() {
	cutoff := time.Now().Add(-j.retention)

	result := j.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("notification cleanup failed")
		return
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("purged", result.RowsAffected).Msg("notification cleanup completed")
	}
}
