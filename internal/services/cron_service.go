package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crstnalianza/rabas-backend/internal/database"
)

// CronService manages scheduled background cleanup jobs
type CronService struct {
	cron        *cron.Cron
	sessionRepo *database.SessionRepository
	userRepo    *database.UserRepository
	dealRepo    *database.DealRepository
}

// NewCronService creates a new CronService
func NewCronService(sessionRepo *database.SessionRepository, userRepo *database.UserRepository, dealRepo *database.DealRepository) *CronService {
	return &CronService{
		cron:        cron.New(cron.WithSeconds()),
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		dealRepo:    dealRepo,
	}
}

// Start schedules all cleanup jobs and starts the scheduler
func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	// Job 1: purge expired sessions hourly
	// Cron format: second minute hour day month weekday
	_, err := s.cron.AddFunc("0 0 * * * *", s.purgeExpiredSessionsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup job: %w", err)
	}
	log.Println("✓ Scheduled: Purge expired sessions (hourly)")

	// Job 2: clear expired password reset tokens daily at 3 AM
	_, err = s.cron.AddFunc("0 0 3 * * *", s.clearExpiredResetTokensJob)
	if err != nil {
		return fmt.Errorf("failed to schedule reset token cleanup job: %w", err)
	}
	log.Println("✓ Scheduled: Clear expired reset tokens (Daily at 3:00 AM)")

	// Job 3: delete expired deals daily at 4 AM
	_, err = s.cron.AddFunc("0 0 4 * * *", s.deleteExpiredDealsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule deal cleanup job: %w", err)
	}
	log.Println("✓ Scheduled: Delete expired deals (Daily at 4:00 AM)")

	s.cron.Start()
	log.Println("✓ Cron service started successfully")

	return nil
}

// Stop stops all cron jobs and waits for running jobs to finish
func (s *CronService) Stop() {
	log.Println("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Cron service stopped")
}

func (s *CronService) purgeExpiredSessionsJob() {
	startTime := time.Now()

	removed, err := s.sessionRepo.DeleteExpired()
	if err != nil {
		log.Printf("[CRON ERROR] Failed to purge expired sessions: %v\n", err)
		return
	}

	log.Printf("[CRON] ✓ Purged %d expired sessions in %v\n", removed, time.Since(startTime))
}

func (s *CronService) clearExpiredResetTokensJob() {
	startTime := time.Now()

	cleared, err := s.userRepo.ClearExpiredResetTokens()
	if err != nil {
		log.Printf("[CRON ERROR] Failed to clear expired reset tokens: %v\n", err)
		return
	}

	log.Printf("[CRON] ✓ Cleared %d expired reset tokens in %v\n", cleared, time.Since(startTime))
}

func (s *CronService) deleteExpiredDealsJob() {
	startTime := time.Now()

	removed, err := s.dealRepo.DeleteExpired()
	if err != nil {
		log.Printf("[CRON ERROR] Failed to delete expired deals: %v\n", err)
		return
	}

	log.Printf("[CRON] ✓ Deleted %d expired deals in %v\n", removed, time.Since(startTime))
}
