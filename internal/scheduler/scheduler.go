package scheduler

import (
	"context"
	"time"

	"github.com/barakabank/bank-service/internal/config"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Store is the persistence the scheduler reads from.
type Store interface {
	PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Operation, error)
	UsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// Digester delivers the pending-review digest.
type Digester interface {
	SendPendingReviewDigest(to string, operations []models.Operation) error
}

// Scheduler periodically reminds agents about operations that have been
// pending review for too long.
type Scheduler struct {
	store    Store
	digester Digester
	cfg      *config.Config
	log      *logrus.Logger
	cron     *cron.Cron
}

// NewScheduler initializes the reminder scheduler.
func NewScheduler(store Store, digester Digester, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		digester: digester,
		cfg:      cfg,
		log:      log,
		cron:     cron.New(),
	}
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ReminderSchedule, s.remindPendingReviews); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infof("Scheduler started with reminder schedule %q", s.cfg.ReminderSchedule)
	return nil
}

// Stop halts the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) remindPendingReviews() {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -s.cfg.ReminderAgeDays)

	stale, err := s.store.PendingOlderThan(ctx, cutoff)
	if err != nil {
		s.log.Errorf("Failed to list stale pending operations: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	agents, err := s.store.UsersByRole(ctx, models.RoleAgent)
	if err != nil {
		s.log.Errorf("Failed to list agents: %v", err)
		return
	}
	var reminded int
	for _, agent := range agents {
		if !agent.Active {
			continue
		}
		if err := s.digester.SendPendingReviewDigest(agent.Email, stale); err != nil {
			s.log.Errorf("Failed to send digest to %s: %v", agent.Email, err)
			continue
		}
		reminded++
	}
	s.log.Infof("Reminded %d agent(s) about %d stale pending operation(s)", reminded, len(stale))
}
