package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("ciclovia-paulista"),
		Value:     []byte(`{"location_id":"ciclovia-paulista"}`),
		Topic:     "raw-weather-forecasts",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "collection_date", Value: []byte("2024-03-09T21:00:00Z")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("ciclovia-paulista"), raw.Key)
	assert.JSONEq(t, `{"location_id":"ciclovia-paulista"}`, string(raw.Value))
	assert.Equal(t, "raw-weather-forecasts", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "2024-03-09T21:00:00Z", raw.Headers["collection_date"])
	assert.Nil(t, raw.Commit, "commit is attached by the reader")
}

func TestToMessage(t *testing.T) {
	now := time.Date(2024, 3, 9, 21, 0, 0, 0, time.UTC)
	a := domain.RiskAssessment{
		ID:         "ciclovia-paulista-0011223344556677",
		LocationID: "ciclovia-paulista",
		RiskLevel:  domain.RiskHigh,
		AssessedAt: now,
	}
	event, err := domain.SerializeAssessment(a)
	require.NoError(t, err)

	msg := toMessage(event)

	assert.Equal(t, []byte(a.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"risk_level":"High"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "assessed_at", msg.Headers[0].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[0].Value)
	assert.Equal(t, "risk_level", msg.Headers[1].Key)
	assert.Equal(t, []byte("High"), msg.Headers[1].Value)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})
	assert.Empty(t, msg.Headers)
	assert.Equal(t, []byte("{}"), msg.Value)
}
