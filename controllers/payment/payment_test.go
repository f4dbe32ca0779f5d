package paymentController

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodStart(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	fixed := time.Date(2026, time.October, 16, 14, 30, 0, 0, loc)
	ctl := &Controller{Now: func() time.Time { return fixed }}

	from, ok := ctl.periodStart("day")
	assert.True(t, ok)
	assert.True(t, from.Equal(time.Date(2026, time.October, 16, 0, 0, 0, 0, loc)))
	assert.Equal(t, time.UTC, from.Location())

	from, ok = ctl.periodStart("month")
	assert.True(t, ok)
	assert.True(t, from.Equal(time.Date(2026, time.October, 1, 0, 0, 0, 0, loc)))

	from, ok = ctl.periodStart("week")
	assert.True(t, ok)
	assert.False(t, from.After(fixed))
	assert.True(t, fixed.Sub(from) < 7*24*time.Hour)

	_, ok = ctl.periodStart("")
	assert.False(t, ok)
}
