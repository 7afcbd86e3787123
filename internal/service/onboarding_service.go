package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type schoolStore interface {
	CreateTerm(ctx context.Context, req dto.CreateTermRequest) (*models.Term, error)
	ConfigureLevels(ctx context.Context, req dto.ConfigureLevelsRequest) error
}

type registryRefresher interface {
	Refresh(ctx context.Context) (RegistrySnapshot, error)
}

// OnboardingService forwards school setup steps to the persistence backend.
type OnboardingService struct {
	store     schoolStore
	registry  registryRefresher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOnboardingService constructs the onboarding flows.
func NewOnboardingService(store schoolStore, registry registryRefresher, validate *validator.Validate, logger *zap.Logger) *OnboardingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingService{store: store, registry: registry, validator: registerValidations(validate), logger: logger}
}

// CreateTerm registers an academic term.
func (s *OnboardingService) CreateTerm(ctx context.Context, req dto.CreateTermRequest) (*models.Term, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	term, err := s.store.CreateTerm(ctx, req)
	if err != nil {
		return nil, persistenceError(err, "failed to create term")
	}
	return term, nil
}

// ConfigureLevels stores the curriculum levels and refreshes the registry snapshot.
// A failed refresh does not undo the committed levels: it is logged and no snapshot is
// returned.
func (s *OnboardingService) ConfigureLevels(ctx context.Context, req dto.ConfigureLevelsRequest) (*RegistrySnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid level configuration")
	}
	if err := ensureUniqueNames(req); err != nil {
		return nil, err
	}
	if err := s.store.ConfigureLevels(ctx, req); err != nil {
		return nil, persistenceError(err, "failed to configure levels")
	}
	if s.registry == nil {
		return nil, nil
	}
	snapshot, err := s.registry.Refresh(ctx)
	if err != nil {
		s.logger.Warn("registry refresh after level configuration failed", zap.String("curriculum_id", req.CurriculumID), zap.Error(err))
		return nil, nil
	}
	return &snapshot, nil
}

func ensureUniqueNames(req dto.ConfigureLevelsRequest) error {
	levels := make(map[string]struct{}, len(req.Levels))
	grades := make(map[string]struct{})
	for _, level := range req.Levels {
		key := strings.ToLower(strings.TrimSpace(level.Name))
		if _, dup := levels[key]; dup {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate level name: "+level.Name)
		}
		levels[key] = struct{}{}
		for _, grade := range level.Grades {
			gkey := strings.ToLower(strings.TrimSpace(grade.Name))
			if _, dup := grades[gkey]; dup {
				return appErrors.Clone(appErrors.ErrValidation, "duplicate grade name: "+grade.Name)
			}
			grades[gkey] = struct{}{}
		}
	}
	return nil
}
