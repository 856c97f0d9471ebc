package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
)

// RiskTransformer implements Transformer by classifying every hour of a raw
// forecast with a trained model.
type RiskTransformer struct {
	classifier domain.Classifier
	modelID    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewTransformer creates a RiskTransformer. modelID is stamped on every
// assessment and folded into its ID.
func NewTransformer(classifier domain.Classifier, modelID string, metrics *observability.Metrics, logger *slog.Logger) *RiskTransformer {
	return &RiskTransformer{
		classifier: classifier,
		modelID:    modelID,
		metrics:    metrics,
		logger:     logger,
	}
}

func (t *RiskTransformer) Transform(_ context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	forecast, err := domain.ParseForecast(raw)
	if err != nil {
		return nil, err
	}

	assessments, err := domain.Assess(forecast, t.classifier, t.modelID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OutputEvent, 0, len(assessments))
	for _, a := range assessments {
		event, err := domain.SerializeAssessment(a)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}

	for _, a := range assessments {
		t.metrics.Assessments.WithLabelValues(a.RiskLevel).Inc()
	}
	t.logger.Debug("forecast assessed",
		"location_id", forecast.LocationID,
		"hours", len(assessments),
	)
	return out, nil
}
