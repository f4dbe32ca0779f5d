package enrollment

import (
	"context"
	"fmt"
	"time"

	"athleticamp/logger"
	"athleticamp/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reconcileBatch = 100
	// pendingGrace is how long a pending intent is left to its own request.
	pendingGrace = 10 * time.Minute
)

// Reconcile completes charged intents whose local writes did not commit, and
// retries pending intents whose charge outcome was unknown with their original
// idempotency key. It returns how many intents were completed.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	if err := s.resumePending(ctx); err != nil {
		return 0, err
	}

	var intents []models.EnrollmentIntent
	err := s.db.WithContext(ctx).
		Where("status = ?", models.IntentCharged).
		Order("updated_at asc").
		Limit(reconcileBatch).
		Find(&intents).Error
	if err != nil {
		return 0, fmt.Errorf("load charged intents: %w", err)
	}

	completed := 0
	for i := range intents {
		intent := &intents[i]
		log := s.log.With(zap.String(logger.FieldIntentID, intent.ID), zap.Int("attempts", intent.Attempts))

		result, err := s.commit(ctx, intent)
		if err != nil {
			s.recordCommitFailure(ctx, intent, err)
			if intent.Status == models.IntentStuck {
				log.Error("enrollment intent stuck, manual review required", zap.Error(err))
			} else {
				log.Warn("enrollment replay failed", zap.Error(err))
			}
			continue
		}

		completed++
		log.Info("enrollment intent reconciled")
		s.notifier.SendEnrollmentReceipt(result.EnrolledClass.Email, result.EnrolledClass.ClassName, result.Payment.PaymentAmount)
	}
	return completed, nil
}

// resumePending settles stale pending intents that still hold a seat. The
// provider returns the original outcome for a key it has seen, so a charge that
// went through earlier is not taken again.
func (s *Service) resumePending(ctx context.Context) error {
	var intents []models.EnrollmentIntent
	err := s.db.WithContext(ctx).
		Where("status = ? AND seat_held = ? AND updated_at < ?", models.IntentPending, true, time.Now().Add(-pendingGrace)).
		Order("updated_at asc").
		Limit(reconcileBatch).
		Find(&intents).Error
	if err != nil {
		return fmt.Errorf("load pending intents: %w", err)
	}

	for i := range intents {
		intent := &intents[i]
		log := s.log.With(zap.String(logger.FieldIntentID, intent.ID))

		var n int64
		if err := s.db.WithContext(ctx).Model(&models.SelectedClass{}).Where("id = ?", intent.SelectedClassID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			// The selection is gone; only a person can tell whether money moved.
			err := s.db.Model(&models.EnrollmentIntent{}).
				Where("id = ? AND status = ?", intent.ID, models.IntentPending).
				Updates(map[string]interface{}{"status": models.IntentStuck, "last_error": "selection removed before the charge settled"}).Error
			if err != nil {
				log.Error("failed to mark intent stuck", zap.Error(err))
				continue
			}
			log.Error("pending enrollment intent lost its selection, manual review required")
			continue
		}

		if err := s.charge(ctx, intent); err != nil {
			log.Warn("pending charge still unsettled", zap.Error(err))
		}
	}
	return nil
}

// Scheduler runs Reconcile on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// StartReconciler schedules Reconcile with a standard cron spec ("@every 1m", "*/5 * * * *").
func (s *Service) StartReconciler(spec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()

		n, err := s.Reconcile(ctx)
		if err != nil {
			s.log.Error("reconcile run failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.log.Info("reconcile run finished", zap.Int("completed", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}

	c.Start()
	s.log.Info("enrollment reconciler started", zap.String("schedule", spec))
	return &Scheduler{cron: c}, nil
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (sc *Scheduler) Stop(ctx context.Context) {
	done := sc.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
