package traffic_test

import (
	"testing"
	"time"

	"delaynotify/internal/core/domain/model/traffic"
	"delaynotify/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDelay(t *testing.T) {
	tests := []struct {
		delay int
		want  traffic.Condition
	}{
		{0, traffic.ConditionLight},
		{9, traffic.ConditionLight},
		{10, traffic.ConditionModerate},
		{29, traffic.ConditionModerate},
		{30, traffic.ConditionHeavy},
		{59, traffic.ConditionHeavy},
		{60, traffic.ConditionSevere},
		{240, traffic.ConditionSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, traffic.ClassifyDelay(tt.delay), "delay %d", tt.delay)
	}
}

func TestNewReport(t *testing.T) {
	t.Run("derives condition and clamps negative delay", func(t *testing.T) {
		r, err := traffic.NewReport(-4, "", 50*time.Minute, "google_maps")
		require.NoError(t, err)
		assert.Equal(t, 0, r.DelayMinutes)
		assert.Equal(t, traffic.ConditionLight, r.Condition)
	})

	t.Run("keeps provider condition", func(t *testing.T) {
		r, err := traffic.NewReport(45, traffic.ConditionSevere, time.Hour, "simulated")
		require.NoError(t, err)
		assert.Equal(t, traffic.ConditionSevere, r.Condition)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := traffic.NewReport(12, "gridlock", time.Hour, " ")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
