// Package lifecycle moderates instructor-submitted draft classes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"athleticamp/logger"
	"athleticamp/models"
	"athleticamp/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("draft class not found")
	ErrInvalidStatus = errors.New("invalid status")
)

// DraftInput is an instructor's submission.
type DraftInput struct {
	Name           string
	Image          string
	Price          float64
	AvailableSeats int
}

// Transition is the outcome of a status change.
type Transition struct {
	Draft models.DraftClass `json:"draft"`
	// Published is set when this transition created the catalog entry.
	Published *models.Class `json:"published,omitempty"`
}

type Service struct {
	db       *gorm.DB
	notifier *utils.Notifier
	log      *zap.Logger
}

func NewService(db *gorm.DB, notifier *utils.Notifier, log *zap.Logger) *Service {
	return &Service{db: db, notifier: notifier, log: log.With(zap.String(logger.FieldOperation, "lifecycle"))}
}

// Submit stores a pending draft owned by the instructor.
func (s *Service) Submit(ctx context.Context, instructor models.User, in DraftInput) (*models.DraftClass, error) {
	draft := models.DraftClass{
		Name:            in.Name,
		Image:           in.Image,
		InstructorName:  instructor.Name,
		InstructorEmail: instructor.Email,
		Price:           in.Price,
		AvailableSeats:  in.AvailableSeats,
		Status:          models.DraftStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListByInstructor returns the instructor's drafts, newest first.
func (s *Service) ListByInstructor(ctx context.Context, email string) ([]models.DraftClass, error) {
	drafts := []models.DraftClass{}
	err := s.db.WithContext(ctx).Where("instructor_email = ?", email).Order("created_at desc").Find(&drafts).Error
	return drafts, err
}

// List returns all drafts, optionally with a given status, newest first.
func (s *Service) List(ctx context.Context, status string) ([]models.DraftClass, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		if !models.ValidDraftStatus(status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		q = q.Where("status = ?", status)
	}
	drafts := []models.DraftClass{}
	err := q.Find(&drafts).Error
	return drafts, err
}

// SetStatus writes the status and, on the first approval, publishes a catalog copy.
// The draft is kept; approving again never creates a second catalog entry.
func (s *Service) SetStatus(ctx context.Context, id, status, feedback string) (*Transition, error) {
	if !models.ValidDraftStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	out := &Transition{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft models.DraftClass
		if err := tx.Where("id = ?", id).First(&draft).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{"status": status}
		if feedback != "" {
			updates["feedback"] = feedback
		}

		if status == models.DraftStatusApproved && draft.PublishedClassID == nil {
			class := draft.CatalogClass()
			if err := tx.Create(&class).Error; err != nil {
				return fmt.Errorf("publish class: %w", err)
			}
			updates["published_class_id"] = class.ID
			out.Published = &class
		}

		if err := tx.Model(&models.DraftClass{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&out.Draft).Error
	})
	if err != nil {
		return nil, err
	}

	log := s.log.With(zap.String(logger.FieldDraftID, id), zap.String("status", status))
	switch status {
	case models.DraftStatusApproved:
		if out.Published != nil {
			log.Info("draft class published", zap.String(logger.FieldClassID, out.Published.ID))
			s.notifier.SendClassApprovedEmail(out.Draft.InstructorEmail, out.Draft.Name)
		}
	case models.DraftStatusRejected:
		log.Info("draft class rejected")
		s.notifier.SendClassRejectedEmail(out.Draft.InstructorEmail, out.Draft.Name, feedback)
	}
	return out, nil
}
