package lifecycle

import (
	"context"
	"testing"

	"athleticamp/database"
	"athleticamp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	d := database.OpenTestDb(t)
	return NewService(d.Db, nil, zap.NewNop()), d.Db
}

var coach = models.User{Name: "Coach Kim", Email: "kim@camp.io", Role: models.RoleInstructor}

func TestSubmitStartsPending(t *testing.T) {
	svc, _ := newService(t)

	d, err := svc.Submit(context.Background(), coach, DraftInput{Name: "Karate", Image: "k.png", Price: 30, AvailableSeats: 15})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, models.DraftStatusPending, d.Status)
	assert.Equal(t, "kim@camp.io", d.InstructorEmail)
	assert.Equal(t, "Coach Kim", d.InstructorName)

	mine, err := svc.ListByInstructor(context.Background(), "kim@camp.io")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := svc.ListByInstructor(context.Background(), "other@camp.io")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestApprovePublishesCopyOnce(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	d, err := svc.Submit(ctx, coach, DraftInput{Name: "Karate", Image: "k.png", Price: 30, AvailableSeats: 15})
	require.NoError(t, err)

	tr, err := svc.SetStatus(ctx, d.ID, models.DraftStatusApproved, "")
	require.NoError(t, err)
	require.NotNil(t, tr.Published)
	assert.Equal(t, models.DraftStatusApproved, tr.Draft.Status)
	require.NotNil(t, tr.Draft.PublishedClassID)
	assert.Equal(t, tr.Published.ID, *tr.Draft.PublishedClassID)

	var classes []models.Class
	require.NoError(t, db.Find(&classes).Error)
	require.Len(t, classes, 1)
	assert.Equal(t, "Karate", classes[0].Name)
	assert.Equal(t, "k.png", classes[0].Image)
	assert.Equal(t, 30.0, classes[0].Price)
	assert.Equal(t, 15, classes[0].AvailableSeats)
	assert.Equal(t, "kim@camp.io", classes[0].InstructorEmail)

	// The draft is still there.
	var draft models.DraftClass
	require.NoError(t, db.First(&draft, "id = ?", d.ID).Error)

	// Re-approval does not duplicate the catalog entry.
	tr, err = svc.SetStatus(ctx, d.ID, models.DraftStatusApproved, "")
	require.NoError(t, err)
	assert.Nil(t, tr.Published)
	var n int64
	db.Model(&models.Class{}).Count(&n)
	assert.EqualValues(t, 1, n)

	// Moving away from approved keeps the published class.
	_, err = svc.SetStatus(ctx, d.ID, models.DraftStatusRejected, "duplicate")
	require.NoError(t, err)
	db.Model(&models.Class{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestRejectStoresFeedback(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	d, err := svc.Submit(ctx, coach, DraftInput{Name: "Yoga"})
	require.NoError(t, err)

	tr, err := svc.SetStatus(ctx, d.ID, models.DraftStatusRejected, "Add a better image")
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusRejected, tr.Draft.Status)
	assert.Equal(t, "Add a better image", tr.Draft.Feedback)
	assert.Nil(t, tr.Published)
}

func TestSetStatusErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, "nope", models.DraftStatusApproved, "")
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := svc.Submit(ctx, coach, DraftInput{Name: "Yoga"})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, d.ID, "published", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a, err := svc.Submit(ctx, coach, DraftInput{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, coach, DraftInput{Name: "B"})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, a.ID, models.DraftStatusApproved, "")
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(ctx, models.DraftStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].Name)

	_, err = svc.List(ctx, "weird")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
