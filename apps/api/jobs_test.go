package main

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logsvc "github.com/tupad/organizador/services/logger"
	"github.com/tupad/organizador/tests"
)

type reminderMock struct {
	calls int32
}

func (r *reminderMock) RemindUpcoming(_ context.Context, _ time.Time) (int, error) {
	atomic.AddInt32(&r.calls, 1)
	return 1, nil
}

func Test_startJobs(t *testing.T) {
	conf := testutil.NewConfig(t)
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	t.Run("bad schedule", func(t *testing.T) {
		conf.Notificaciones.ReminderSchedule = "every now and then"
		_, err := startJobs(conf, logger, &reminderMock{})
		assert.Error(t, err)
	})

	t.Run("runs reminders", func(t *testing.T) {
		conf.Notificaciones.ReminderSchedule = "@every 1s"
		r := &reminderMock{}
		c, err := startJobs(conf, logger, r)
		require.NoError(t, err)
		defer c.Stop()

		assert.Eventually(t, func() bool {
			return atomic.LoadInt32(&r.calls) > 0
		}, 3*time.Second, 50*time.Millisecond)
	})
}
