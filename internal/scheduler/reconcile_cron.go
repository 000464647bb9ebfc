package cron

import (
	"context"

	"github.com/lifeline-project/lifeline-api/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartReconcileCronJobs schedules the daily milestone reconciliation
// sweep. Safe to run at any cadence because evaluation is idempotent.
func StartReconcileCronJobs(reconciler *jobs.MilestoneReconciler) {
	c := cron.New()

	c.AddFunc("0 3 * * *", func() {
		if err := reconciler.RunDailySweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Milestone reconciliation sweep failed")
		}
	})

	c.Start()
}
