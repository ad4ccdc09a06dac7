package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/notificacion"
)

const reminderTimeout = 2 * time.Minute

type reminder interface {
	RemindUpcoming(ctx context.Context, now time.Time) (int, error)
}

// startJobs schedules the periodic evaluation reminders. Overlapping runs are skipped.
func startJobs(conf *core.Config, logger core.Logger, notifSvc reminder) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(conf.Notificaciones.ReminderSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
		defer cancel()

		n, err := notifSvc.RemindUpcoming(ctx, notificacion.NowFunc())
		if err != nil {
			logger.Error(fmt.Sprintf("sending reminders: %v", err), err)
			return
		}
		if n > 0 {
			logger.Info(fmt.Sprintf("%d reminders sent", n))
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("reminders scheduled: %q", conf.Notificaciones.ReminderSchedule))
	c.Start()
	return c, nil
}
