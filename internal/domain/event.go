package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RiskAssessment is the risk predicted for one location and forecast hour.
type RiskAssessment struct {
	ID           string    `json:"id"`
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Time         time.Time `json:"time"`
	Temperature  float64   `json:"temperature_2m"`
	Humidity     float64   `json:"relative_humidity_2m"`
	Features     Features  `json:"features"`
	RiskLevel    string    `json:"risk_level"`
	ModelID      string    `json:"model_id,omitempty"`
	AssessedAt   time.Time `json:"assessed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeAssessment marshals an assessment into an OutputEvent keyed by its
// ID, with the risk level and assessment time copied into headers.
func SerializeAssessment(a RiskAssessment) (OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return OutputEvent{
		Key:   []byte(a.ID),
		Value: data,
		Headers: map[string]string{
			"risk_level":  a.RiskLevel,
			"assessed_at": a.AssessedAt.Format(time.RFC3339),
		},
	}, nil
}

// SerializeForecast marshals a collected forecast into an OutputEvent keyed by
// its location, ready to publish to the raw forecast topic.
func SerializeForecast(f Forecast) (OutputEvent, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize forecast: %w", err)
	}
	return OutputEvent{
		Key:   []byte(f.LocationID),
		Value: data,
		Headers: map[string]string{
			"collection_date": f.CollectionDate,
		},
	}, nil
}
