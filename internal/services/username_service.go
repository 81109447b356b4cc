package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/crstnalianza/rabas-backend/internal/database"
)

const maxUsernameAttempts = 10

// ErrUsernameExhausted is returned when no free username could be
// derived within the attempt budget.
var ErrUsernameExhausted = errors.New("could not derive a unique username")

// UsernameService derives usernames for accounts created through
// Google sign-in, where the user never picks one themselves.
type UsernameService struct {
	repo *database.UserRepository
}

// NewUsernameService creates a new UsernameService
func NewUsernameService(repo *database.UserRepository) *UsernameService {
	return &UsernameService{repo: repo}
}

// Derive builds a username from the given display name: lowercased,
// whitespace stripped, with a random numeric suffix to dodge
// collisions.
func (s *UsernameService) Derive(displayName string) (string, error) {
	base := normalize(displayName)
	if base == "" {
		base = "user"
	}

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%04d", base, rand.Intn(10000))

		exists, err := s.repo.UsernameExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", ErrUsernameExhausted
}

func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
