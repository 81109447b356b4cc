package services

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	applicationIDMin = 100000
	applicationIDMax = 999999

	// maxAllocateAttempts bounds the retry loop. The keyspace holds
	// 900000 ids, so hitting this limit means the table is close to
	// exhausted and the insert should fail loudly.
	maxAllocateAttempts = 25
)

// ErrApplicationIDExhausted is returned when no free application id
// could be drawn within the attempt budget.
var ErrApplicationIDExhausted = errors.New("could not allocate a unique application id")

// ApplicationService submits business applications with their public
// six-digit ids.
type ApplicationService struct {
	repo   *database.ApplicationRepository
	logger *logrus.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(repo *database.ApplicationRepository, logger *logrus.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, logger: logger}
}

// Submit draws a random six-digit id and inserts the application. The
// id column carries a unique constraint, so a concurrent insert of the
// same draw surfaces as ErrDuplicateApplicationID and we simply draw
// again.
func (s *ApplicationService) Submit(app *models.BusinessApplication) error {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		app.ApplicationID = applicationIDMin + rand.Intn(applicationIDMax-applicationIDMin+1)

		err := s.repo.Create(app)
		if err == nil {
			return nil
		}
		if errors.Is(err, database.ErrDuplicateApplicationID) {
			s.logger.WithFields(logrus.Fields{
				"application_id": app.ApplicationID,
				"attempt":        attempt + 1,
			}).Warn("Application id collision, redrawing")
			continue
		}
		return fmt.Errorf("failed to submit application: %w", err)
	}

	return ErrApplicationIDExhausted
}
