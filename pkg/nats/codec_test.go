package nats

import (
	"encoding/json"
	"testing"
	"time"

	"ai-sitebuilder-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	evt := events.BaseEvent{
		Type:       events.SitePublished,
		Data:       map[string]interface{}{"url": "https://hellositeai.github.io/bakery/"},
		OccurredAt: at,
	}

	raw, err := json.Marshal(envelope{Type: evt.Type, OccurredAt: evt.OccurredAt, Data: evt.Data})
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, events.SitePublished, got.EventType())
	assert.True(t, at.Equal(got.Timestamp()))
	assert.Equal(t, "https://hellositeai.github.io/bakery/", got.Payload()["url"])
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "sites.SITE_PUBLISHED", Subject(events.SitePublished))
}
