package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/triageon/triageon/internal/platform/inference"
	"github.com/triageon/triageon/internal/platform/metrics"
	"github.com/triageon/triageon/internal/scoring"
)

// ErrModelNotConfigured is returned by a model-backed prediction when no
// model was loaded for the disease.
var ErrModelNotConfigured = errors.New("model not configured")

type configuredModel struct {
	spec      ModelSpec
	predictor inference.Predictor
}

// Service runs the single-disease evaluations. Models are attached at
// startup and not changed while serving.
type Service struct {
	logger zerolog.Logger
	models map[string]configuredModel
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{
		logger: logger.With().Str("component", "prediction").Logger(),
		models: make(map[string]configuredModel),
	}
}

// SetModel attaches the predictor used for spec.Disease.
func (s *Service) SetModel(spec ModelSpec, p inference.Predictor) {
	s.models[spec.Disease] = configuredModel{spec: spec, predictor: p}
}

// Configure opens src and attaches it for spec. An unconfigured source is
// skipped and the endpoint will report the model as unavailable.
func (s *Service) Configure(spec ModelSpec, src inference.Source) error {
	if !src.Configured() {
		s.logger.Warn().Str("disease", spec.Disease).Msg("no model configured")
		return nil
	}
	src.Features = spec.Features()
	p, err := inference.Open(src)
	if err != nil {
		return fmt.Errorf("loading %s model: %w", spec.Disease, err)
	}
	s.SetModel(spec, p)
	s.logger.Info().Str("disease", spec.Disease).Str("source", describe(p)).Msg("model loaded")
	return nil
}

// Models lists the configured models in a stable order.
func (s *Service) Models() []ModelInfo {
	var out []ModelInfo
	for _, spec := range []ModelSpec{DiabetesModel, HeartModel} {
		m, ok := s.models[spec.Disease]
		if !ok {
			continue
		}
		out = append(out, ModelInfo{
			Disease:  spec.Disease,
			Source:   describe(m.predictor),
			Features: m.spec.Features(),
			Cutoff:   m.spec.Cutoff,
		})
	}
	return out
}

func (s *Service) EvaluateHypertension(rec scoring.VitalRecord) scoring.Evaluation {
	return s.stage(scoring.Hypertension, rec)
}

func (s *Service) EvaluateInfection(rec scoring.VitalRecord) scoring.Evaluation {
	return s.stage(scoring.Infection, rec)
}

func (s *Service) EvaluateAnemia(rec scoring.VitalRecord) scoring.Evaluation {
	return s.stage(scoring.Anemia, rec)
}

func (s *Service) stage(st *scoring.Stager, rec scoring.VitalRecord) scoring.Evaluation {
	ev := st.ClassifyRecord(rec)
	metrics.RecordEvaluation(ev.Disease, ev.Severity)
	s.logger.Debug().Str("disease", ev.Disease).Str("severity", ev.Severity).Msg("staged evaluation")
	return ev
}

func (s *Service) PredictDiabetes(ctx context.Context, rec scoring.VitalRecord) (scoring.Evaluation, error) {
	return s.predict(ctx, DiabetesModel, rec)
}

func (s *Service) PredictHeart(ctx context.Context, rec scoring.VitalRecord) (scoring.Evaluation, error) {
	return s.predict(ctx, HeartModel, rec)
}

func (s *Service) predict(ctx context.Context, spec ModelSpec, rec scoring.VitalRecord) (scoring.Evaluation, error) {
	m, ok := s.models[spec.Disease]
	if !ok {
		return scoring.Evaluation{}, fmt.Errorf("%s: %w", spec.Disease, ErrModelNotConfigured)
	}

	start := time.Now()
	p, err := m.predictor.Predict(ctx, m.spec.Vector(rec))
	if err == nil {
		err = inference.CheckProbability(p)
	}
	metrics.RecordPrediction(spec.Disease, err, time.Since(start))
	if err != nil {
		return scoring.Evaluation{}, fmt.Errorf("%s prediction: %w", spec.Disease, err)
	}

	severity := SeverityLow
	if p >= m.spec.Cutoff {
		severity = SeverityHigh
	}
	risk := round3(p)
	ev := scoring.Evaluation{
		Disease:         spec.Disease,
		Severity:        severity,
		RiskProbability: &risk,
		Confidence:      round3(math.Abs(p-0.5) * 2),
	}
	metrics.RecordEvaluation(ev.Disease, ev.Severity)
	s.logger.Debug().Str("disease", ev.Disease).Float64("probability", p).Str("severity", severity).Msg("model evaluation")
	return ev, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func describe(p inference.Predictor) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
