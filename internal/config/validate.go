package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidMinStatements indicates a minimum opportunity size below one
	ErrInvalidMinStatements = errors.New("invalid min_statements")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrEmptyDBPath indicates a missing database path
	ErrEmptyDBPath = errors.New("empty database path")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidJobs indicates a non-positive worker count
	ErrInvalidJobs = errors.New("invalid mining jobs")

	// ErrEmptyRefactoringType indicates a missing refactoring type filter
	ErrEmptyRefactoringType = errors.New("empty refactoring type")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Analysis.MinStatements < 1 {
		errs = append(errs, fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidMinStatements, cfg.Analysis.MinStatements))
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: db_path is required", ErrEmptyDBPath))
	}

	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}

	if err := validateMining(&cfg.Mining); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: cannot be negative, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	return joinErrors(errs)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

func validateCache(cfg *CacheConfig) error {
	var errs []error

	if cfg.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCacheSettings, cfg.Capacity))
	}

	// Zero disables expiry.
	if cfg.TTL < 0 {
		errs = append(errs, fmt.Errorf("%w: ttl cannot be negative, got %s", ErrInvalidCacheSettings, cfg.TTL))
	}

	return joinErrors(errs)
}

func validateMining(cfg *MiningConfig) error {
	var errs []error

	if cfg.Jobs < 1 {
		errs = append(errs, fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidJobs, cfg.Jobs))
	}

	if strings.TrimSpace(cfg.RefactoringType) == "" {
		errs = append(errs, fmt.Errorf("%w: refactoring_type is required", ErrEmptyRefactoringType))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into one. The result still matches every
// sentinel through errors.Is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error { return e.errs }
