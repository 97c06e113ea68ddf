package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvpkit/rsvpd/internal/model"
)

func Test_ValidateNewEvent(t *testing.T) {
	date := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		eventName string
		date      time.Time
		capacity  int
		wantField string
	}{
		{name: "valid", eventName: "GopherCon", date: date, capacity: 100},
		{name: "max_length_name_ok", eventName: strings.Repeat("x", model.MaxNameLength), date: date, capacity: 1},
		{name: "empty_name", eventName: "", date: date, capacity: 10, wantField: "name"},
		{name: "oversized_name", eventName: strings.Repeat("x", model.MaxNameLength+1), date: date, capacity: 10, wantField: "name"},
		{name: "zero_date", eventName: "X", capacity: 10, wantField: "date"},
		{name: "zero_capacity", eventName: "X", date: date, capacity: 0, wantField: "capacity"},
		{name: "negative_capacity", eventName: "X", date: date, capacity: -1, wantField: "capacity"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := model.ValidateNewEvent(tc.eventName, tc.date, tc.capacity)
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}
