package triage

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/triageon/triageon/internal/platform/metrics"
	"github.com/triageon/triageon/internal/scoring"
)

type Service struct {
	logger zerolog.Logger
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger.With().Str("component", "triage").Logger()}
}

// Assess validates the fifteen triage fields, then scores and classifies
// the record. Guard failures are returned as *scoring.FieldError.
func (s *Service) Assess(rec scoring.VitalRecord) (scoring.Assessment, error) {
	rec = rec.Require(scoring.TriageFields...)
	if err := scoring.Validate(rec); err != nil {
		var fe *scoring.FieldError
		if errors.As(err, &fe) {
			metrics.RecordGuardRejection(fe.Field, fe.Reason)
			s.logger.Debug().Str("field", fe.Field).Str("reason", fe.Reason).Msg("triage record rejected")
		}
		return scoring.Assessment{}, err
	}

	v, err := scoring.VitalsFrom(rec)
	if err != nil {
		return scoring.Assessment{}, err
	}
	a := scoring.Assess(v)

	metrics.RecordEvaluation("triage", a.Band.Level)
	s.logger.Debug().
		Int("score", a.Score).
		Strs("factors", a.Factors).
		Str("level", a.Band.Level).
		Msg("triage assessed")
	return a, nil
}

// Triage runs Assess and renders the response body.
func (s *Service) Triage(rec scoring.VitalRecord) (*Response, error) {
	a, err := s.Assess(rec)
	if err != nil {
		return nil, err
	}
	return NewResponse(a), nil
}
