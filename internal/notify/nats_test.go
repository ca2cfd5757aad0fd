package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	sentAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	data, err := encodeMessage(sampleNotification(), sentAt)
	require.NoError(t, err)

	var decoded NATSMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleNotification(), decoded.Notification)
	assert.True(t, sentAt.Equal(decoded.SentAt))

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "00ff00ff00ff00ff", flat["fingerprint"])
	assert.Equal(t, "2024-05-01T12:00:00Z", flat["sent_at"])
}

func TestNewNATSUnreachable(t *testing.T) {
	_, err := NewNATS(NATSConfig{URL: "nats://127.0.0.1:1", ConnectTimeout: 100 * time.Millisecond}, nil)
	assert.Error(t, err)
}
