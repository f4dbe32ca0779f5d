// Package enrollment turns a paid class selection into an enrollment.
//
// Every enrollment is tracked by an EnrollmentIntent keyed by the selected class.
// The intent reserves a class seat and is charged with the payment provider;
// all local writes (enrolled class, payment log, student count, selection
// removal) are then committed in a single transaction. A charged intent whose
// commit failed, or a pending one whose charge outcome was unknown, is picked
// up again by Reconcile.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"athleticamp/logger"
	"athleticamp/models"
	"athleticamp/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const Currency = "usd"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoSeats           = errors.New("no seats available")
	ErrAlreadyEnrolled   = errors.New("already enrolled")
	ErrInvalidAmount     = errors.New("invalid payment amount")
	ErrAmountMismatch    = errors.New("payment amount does not match the class price")
	ErrPaymentInProgress = errors.New("payment already in progress")
)

// CommitError reports a charge that succeeded while the local writes did not.
// The intent stays charged and is completed later by Reconcile.
type CommitError struct {
	IntentID string
	Err      error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("enrollment intent %s charged but not recorded: %v", e.IntentID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Request is a payment for one selected class.
type Request struct {
	SelectedClassID string
	Email           string
	PaymentMethodID string
	Price           float64 // major units
}

// Result is what a completed enrollment produced.
type Result struct {
	IntentID      string               `json:"intentId"`
	EnrolledClass models.EnrolledClass `json:"enrolledClass"`
	Payment       models.Payment       `json:"payment"`
}

type Service struct {
	db          *gorm.DB
	gateway     utils.PaymentGateway
	notifier    *utils.Notifier
	log         *zap.Logger
	maxAttempts int
}

func NewService(db *gorm.DB, gateway utils.PaymentGateway, notifier *utils.Notifier, log *zap.Logger, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		db:          db,
		gateway:     gateway,
		notifier:    notifier,
		log:         log.With(zap.String(logger.FieldOperation, "enrollment")),
		maxAttempts: maxAttempts,
	}
}

// Enroll charges the caller for their selection and records the enrollment.
func (s *Service) Enroll(ctx context.Context, req Request) (*Result, error) {
	amountMinor := utils.ToMinorUnits(req.Price)
	if amountMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	db := s.db.WithContext(ctx)

	var sel models.SelectedClass
	if err := db.Where("id = ? AND email = ?", req.SelectedClassID, req.Email).First(&sel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("selected class %s: %w", req.SelectedClassID, ErrNotFound)
		}
		return nil, err
	}
	if amountMinor != utils.ToMinorUnits(sel.Price) {
		return nil, fmt.Errorf("%w: got %d, class costs %d", ErrAmountMismatch, amountMinor, utils.ToMinorUnits(sel.Price))
	}

	var class models.Class
	if err := db.Where("id = ?", sel.ClassID).First(&class).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("class %s: %w", sel.ClassID, ErrNotFound)
		}
		return nil, err
	}

	intent, err := s.acquireIntent(ctx, sel, req, amountMinor)
	if err != nil {
		return nil, err
	}
	log := s.log.With(
		zap.String(logger.FieldIntentID, intent.ID),
		zap.String(logger.FieldSelectedClass, sel.ID),
		zap.String(logger.FieldEmail, req.Email),
	)

	if intent.Status == models.IntentPending {
		if err := s.claimSeat(ctx, intent); err != nil {
			if errors.Is(err, ErrNoSeats) {
				s.markFailed(intent, ErrNoSeats.Error())
			}
			return nil, err
		}
		if err := s.charge(ctx, intent); err != nil {
			log.Warn("payment not completed", zap.Error(err))
			return nil, err
		}
		log.Info("payment intent charged", zap.String("payment_intent_id", intent.PaymentIntentID))
	} else {
		log.Info("replaying charged enrollment intent")
	}

	result, err := s.commit(ctx, intent)
	if err != nil {
		s.recordCommitFailure(ctx, intent, err)
		log.Error("enrollment charged but not recorded", zap.Error(err))
		return nil, &CommitError{IntentID: intent.ID, Err: err}
	}

	s.notifier.SendEnrollmentReceipt(result.EnrolledClass.Email, result.EnrolledClass.ClassName, result.Payment.PaymentAmount)
	return result, nil
}

// acquireIntent creates or claims the intent for a selection.
func (s *Service) acquireIntent(ctx context.Context, sel models.SelectedClass, req Request, amountMinor int64) (*models.EnrollmentIntent, error) {
	db := s.db.WithContext(ctx)

	var intent models.EnrollmentIntent
	err := db.Where("selected_class_id = ?", sel.ID).First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		intent = models.EnrollmentIntent{
			SelectedClassID: sel.ID,
			ClassID:         sel.ClassID,
			Email:           req.Email,
			PaymentMethodID: req.PaymentMethodID,
			AmountMinor:     amountMinor,
			Currency:        Currency,
			Status:          models.IntentPending,
		}
		if createErr := db.Create(&intent).Error; createErr == nil {
			return &intent, nil
		}
		// Lost a race on the unique selection key; use the winner's row.
		err = db.Where("selected_class_id = ?", sel.ID).First(&intent).Error
	}
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case models.IntentCompleted:
		return nil, ErrAlreadyEnrolled
	case models.IntentCharged, models.IntentStuck, models.IntentPending:
		// pending: an earlier charge may have reached the provider. The retry keeps
		// the stored key, amount and payment method so the provider deduplicates it.
		return &intent, nil
	}

	// failed: the provider definitively refused, so a new key is safe.
	res := db.Model(&models.EnrollmentIntent{}).
		Where("id = ? AND status = ?", intent.ID, models.IntentFailed).
		Updates(map[string]interface{}{
			"status":            models.IntentPending,
			"payment_method_id": req.PaymentMethodID,
			"amount_minor":      amountMinor,
			"charge_attempts":   gorm.Expr("charge_attempts + ?", 1),
			"last_error":        "",
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPaymentInProgress
	}
	if err := db.Where("id = ?", intent.ID).First(&intent).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

// claimSeat takes one seat of the class for a pending intent. A seat already
// held by the intent is not taken twice.
func (s *Service) claimSeat(ctx context.Context, intent *models.EnrollmentIntent) error {
	if intent.SeatHeld {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.EnrollmentIntent{}).
			Where("id = ? AND status = ? AND seat_held = ?", intent.ID, models.IntentPending, false).
			Update("seat_held", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another request for the same intent holds it already.
			intent.SeatHeld = true
			return nil
		}

		res = tx.Model(&models.Class{}).
			Where("id = ? AND available_seats > ?", intent.ClassID, 0).
			Update("available_seats", gorm.Expr("available_seats - ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoSeats
		}
		intent.SeatHeld = true
		return nil
	})
}

func (s *Service) charge(ctx context.Context, intent *models.EnrollmentIntent) error {
	pi, err := s.gateway.CreatePaymentIntent(ctx, utils.PaymentIntentParams{
		AmountMinor:     intent.AmountMinor,
		Currency:        intent.Currency,
		PaymentMethodID: intent.PaymentMethodID,
		IdempotencyKey:  idempotencyKey(intent),
		ReceiptEmail:    intent.Email,
		Metadata: map[string]string{
			"enrollment_intent_id": intent.ID,
			"selected_class_id":    intent.SelectedClassID,
			"class_id":             intent.ClassID,
		},
	})
	if err != nil {
		if errors.Is(err, utils.ErrPaymentDeclined) {
			s.markFailed(intent, err.Error())
		} else {
			// The outcome is unknown; the intent stays pending with its seat and key.
			s.recordChargeError(intent, err)
		}
		return err
	}

	intent.Status = models.IntentCharged
	intent.PaymentIntentID = pi.ID
	intent.ProviderPayload = pi.Raw
	return s.db.WithContext(ctx).Model(&models.EnrollmentIntent{}).
		Where("id = ?", intent.ID).
		Updates(map[string]interface{}{
			"status":            models.IntentCharged,
			"payment_intent_id": pi.ID,
			"provider_payload":  []byte(pi.Raw),
		}).Error
}

func idempotencyKey(intent *models.EnrollmentIntent) string {
	return fmt.Sprintf("%s-%d", intent.ID, intent.ChargeAttempts)
}

// markFailed only moves a pending intent and gives back the seat it held.
// A concurrent success is never overwritten.
func (s *Service) markFailed(intent *models.EnrollmentIntent, reason string) {
	// Detached from the request context so the seat is released on cancellation too.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.EnrollmentIntent
		if err := tx.Where("id = ?", intent.ID).First(&current).Error; err != nil {
			return err
		}
		res := tx.Model(&models.EnrollmentIntent{}).
			Where("id = ? AND status = ?", intent.ID, models.IntentPending).
			Updates(map[string]interface{}{"status": models.IntentFailed, "last_error": reason, "seat_held": false})
		if res.Error != nil || res.RowsAffected == 0 || !current.SeatHeld {
			return res.Error
		}
		return tx.Model(&models.Class{}).
			Where("id = ?", intent.ClassID).
			Update("available_seats", gorm.Expr("available_seats + ?", 1)).Error
	})
	if err != nil {
		s.log.Error("failed to mark intent failed", zap.String(logger.FieldIntentID, intent.ID), zap.Error(err))
		return
	}
	intent.Status = models.IntentFailed
	intent.SeatHeld = false
}

func (s *Service) recordChargeError(intent *models.EnrollmentIntent, cause error) {
	err := s.db.Model(&models.EnrollmentIntent{}).
		Where("id = ? AND status = ?", intent.ID, models.IntentPending).
		Update("last_error", cause.Error()).Error
	if err != nil {
		s.log.Error("failed to record charge error", zap.String(logger.FieldIntentID, intent.ID), zap.Error(err))
	}
}

func (s *Service) recordCommitFailure(ctx context.Context, intent *models.EnrollmentIntent, cause error) {
	intent.Attempts++
	intent.LastError = cause.Error()
	if intent.Attempts >= s.maxAttempts {
		intent.Status = models.IntentStuck
	}
	// Detached from ctx: the failure must be recorded even when the request was cancelled.
	err := s.db.Model(&models.EnrollmentIntent{}).
		Where("id = ?", intent.ID).
		Updates(map[string]interface{}{
			"attempts":   intent.Attempts,
			"last_error": intent.LastError,
			"status":     intent.Status,
		}).Error
	if err != nil {
		s.log.Error("failed to record commit failure", zap.String(logger.FieldIntentID, intent.ID), zap.Error(err))
	}
}

// commit applies every local write of a charged intent in one transaction.
func (s *Service) commit(ctx context.Context, intent *models.EnrollmentIntent) (*Result, error) {
	result := &Result{IntentID: intent.ID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sel models.SelectedClass
		err := tx.Where("id = ?", intent.SelectedClassID).First(&sel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already committed by a concurrent replay.
			if err := tx.Where("id = ?", intent.SelectedClassID).First(&result.EnrolledClass).Error; err != nil {
				return fmt.Errorf("selected class %s: %w", intent.SelectedClassID, ErrNotFound)
			}
			if err := tx.Where("id = ?", result.EnrolledClass.PaymentID).First(&result.Payment).Error; err != nil {
				return err
			}
			return completeIntent(tx, intent.ID)
		}
		if err != nil {
			return err
		}

		payment := models.Payment{
			ClassID:          sel.ClassID,
			SelectedClassID:  sel.ID,
			Email:            sel.Email,
			PaymentMethodID:  intent.PaymentMethodID,
			PaymentIntentID:  intent.PaymentIntentID,
			PaymentAmount:    float64(intent.AmountMinor) / 100,
			Currency:         intent.Currency,
			Date:             time.Now().UTC(),
			ProviderResponse: datatypes.JSON(intent.ProviderPayload),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		enrolled := models.EnrolledClass{
			Base:           models.Base{ID: sel.ID},
			ClassID:        sel.ClassID,
			Email:          sel.Email,
			Image:          sel.Image,
			ClassName:      sel.ClassName,
			InstructorName: sel.InstructorName,
			TotalStudents:  sel.TotalStudents,
			RemainingSeats: int(sel.AvailableSeats),
			Price:          sel.Price,
			PaymentID:      payment.ID,
		}
		if err := tx.Create(&enrolled).Error; err != nil {
			return fmt.Errorf("insert enrolled class: %w", err)
		}

		if err := tx.Delete(&models.SelectedClass{}, "id = ?", sel.ID).Error; err != nil {
			return fmt.Errorf("delete selected class: %w", err)
		}

		// The seat was taken by claimSeat before the charge.
		res := tx.Model(&models.Class{}).
			Where("id = ?", sel.ClassID).
			Update("total_students", gorm.Expr("total_students + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("update class counters: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("class %s: %w", sel.ClassID, ErrNotFound)
		}

		result.EnrolledClass = enrolled
		result.Payment = payment
		return completeIntent(tx, intent.ID)
	})
	if err != nil {
		return nil, err
	}
	intent.Status = models.IntentCompleted
	return result, nil
}

func completeIntent(tx *gorm.DB, intentID string) error {
	return tx.Model(&models.EnrollmentIntent{}).
		Where("id = ?", intentID).
		Updates(map[string]interface{}{"status": models.IntentCompleted, "last_error": ""}).Error
}
