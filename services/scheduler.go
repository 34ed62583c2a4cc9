// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"contest-hub-service/models"
)

// StartOpsSweep logs moderation-queue depth and expired approved contests on
// an hourly cadence. Read-only; nothing is mutated.
func (s *ContestService) StartOpsSweep() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			var pending int64
			if err := s.DB.Model(&models.Contest{}).
				Where("status = ?", models.ContestPending).
				Count(&pending).Error; err != nil {
				log.Printf("[Sweep] DB error counting pending contests: %v", err)
				return
			}

			var expired int64
			if err := s.DB.Model(&models.Contest{}).
				Where("status = ? AND deadline < ?", models.ContestApproved, time.Now()).
				Count(&expired).Error; err != nil {
				log.Printf("[Sweep] DB error counting expired contests: %v", err)
				return
			}

			log.Printf("📋 [Sweep] %d contest(s) awaiting moderation, %d approved contest(s) past deadline", pending, expired)
		}),
	)
}
