package timezone_test

import (
	"testing"
	"time"

	"consultation/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })

	timezone.Init("Not/AZone")
	assert.Equal(t, time.UTC, timezone.GetLocation())

	timezone.Init("")
	assert.Equal(t, time.UTC, timezone.GetLocation())

	timezone.Init("Asia/Kolkata")
	assert.Equal(t, "Asia/Kolkata", timezone.GetLocation().String())
	assert.Equal(t, "Asia/Kolkata", timezone.Now().Location().String())
}

func TestParseAndFormat(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })
	timezone.Init("Asia/Kolkata")

	slot, err := timezone.Parse("02-01-2006 15:04", "12-03-2026 10:30")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-12T05:00:00Z", slot.UTC().Format(time.RFC3339))
	assert.Equal(t, "12-03-2026 10:30", timezone.Format(slot.UTC(), "02-01-2006 15:04"))
}

func TestToday(t *testing.T) {
	today := timezone.Today()

	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Minute())
	assert.Zero(t, today.Second())
	assert.Equal(t, timezone.GetLocation(), today.Location())
}
