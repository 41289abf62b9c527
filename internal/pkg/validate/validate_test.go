package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Time  string `json:"time" validate:"required,hhmm"`
	Day   string `json:"day" validate:"omitempty,weekday"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(sample{Name: "Ana", Time: "9:30", Day: "monday", Phone: "+15551234567"}))

	err := v.Struct(sample{Name: "A", Time: "25:00", Day: "Caturday", Phone: "0123"})
	require.Error(t, err)

	fields := Fields(err)
	assert.Equal(t, "must be at least 2", fields["name"])
	assert.Equal(t, "must be a time in HH:MM format", fields["time"])
	assert.Contains(t, fields, "day")
	assert.Contains(t, fields, "phone")
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Fields(assert.AnError))
}
