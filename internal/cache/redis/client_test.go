package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

func TestDecodeStatus(t *testing.T) {
	st, err := decodeStatus(`{"available":true,"current_load":60}`)
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.Equal(t, 60.0, st.CurrentLoad)

	_, err = decodeStatus(`{"available":true,"current_load":140}`)
	assert.Error(t, err)

	_, err = decodeStatus(`not json`)
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "specialist:status:CARD_01", statusKey("CARD_01"))
	assert.Equal(t, "specialist:assignments:CARD_01", assignmentKey("CARD_01"))
}

// Requires a running server; set MEDITRIAGE_TEST_REDIS_HOST to enable.
func TestStatusRoundTrip(t *testing.T) {
	host := os.Getenv("MEDITRIAGE_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("MEDITRIAGE_TEST_REDIS_HOST not set")
	}

	c, err := NewClient(host, 6379, "", 15, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.SetStatus(ctx, "CARD_01", models.SpecialistStatus{Available: true, CurrentLoad: 60}))
	defer c.ClearStatus(ctx, "CARD_01")

	statuses, err := c.Statuses(ctx, []string{"CARD_01", "UNKNOWN"})
	require.NoError(t, err)
	assert.Len(t, statuses, 1)
	assert.Equal(t, 60.0, statuses["CARD_01"].CurrentLoad)
}
