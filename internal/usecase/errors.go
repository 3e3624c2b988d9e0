package usecase

import (
	"errors"

	"github.com/mraditya/leaguesim/internal/brain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")

	// ErrDependencyUnavailable matches failures of the soft-state
	// collaborator so transport callers can answer 503 without importing
	// the provider package.
	ErrDependencyUnavailable = brain.ErrProviderUnavailable
)
