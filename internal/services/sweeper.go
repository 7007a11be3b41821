package services

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sweepSchedule runs the expiry sweep once a day at midnight.
const sweepSchedule = "0 0 * * *"

// Sweeper owns the recurring trash expiry job. It is started on boot and
// stopped on shutdown; there is no runtime schedule override.
type Sweeper struct {
	cron          *cron.Cron
	trash         *TrashService
	retentionDays int
	log           *logrus.Logger
}

func NewSweeper(trash *TrashService, retentionDays int, log *logrus.Logger) *Sweeper {
	return &Sweeper{
		cron:          cron.New(),
		trash:         trash,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Start schedules the daily sweep and starts the cron runner.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(sweepSchedule, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("retention_days", s.retentionDays).Info("trash expiry sweeper started")
	return nil
}

// Stop stops the scheduler. The returned context is done once any in-flight
// sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) runOnce() {
	result, err := s.trash.RunExpirySweep(context.Background(), s.retentionDays)
	if err != nil {
		s.log.WithError(err).Error("trash expiry sweep failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"deleted": result.Deleted,
		"failed":  result.Failed,
	}).Info("trash expiry sweep completed")
}
