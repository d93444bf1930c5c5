package status

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPoolAndCampaign(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(Snapshot{
		Pool: domain.PoolStatus{
			Accounts: []domain.AccountStatus{
				{ID: "ghost.one", Authenticated: true, ProxyConfigured: true},
				{ID: "ghost.two", InUse: true},
			},
			Cursor: 1,
		},
		Campaigns: []domain.CampaignSummary{
			{
				ID:             "campaign_1a2b3c4d",
				Name:           "launch",
				CreatedAt:      now.Add(-50 * time.Hour),
				Total:          5,
				Completed:      3,
				Failed:         1,
				Pending:        1,
				CompletionRate: "60.0%",
			},
		},
		Chunks: 7,
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 2 (1 authenticated)")
	assert.Contains(t, output, "chunks: 7")
	assert.Contains(t, output, "ghost.one")
	assert.Contains(t, output, "proxy")
	assert.Contains(t, output, "[in use]")
	assert.Contains(t, output, "not authenticated")
	assert.Contains(t, output, "launch (campaign_1a2b3c4d)")
	assert.Contains(t, output, "60.0% sent")
	assert.Contains(t, output, "3 sent · 1 failed · 1 pending of 5")
	assert.Contains(t, output, "[errors]")
	assert.Contains(t, output, "created 2 days ago")

	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if strings.Contains(line, "ghost.two") {
			assert.Contains(t, line, "<- next")
		}
	}
}

func TestRenderEmptySnapshot(t *testing.T) {
	output, err := Render(Snapshot{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 0 (0 authenticated)")
	assert.Contains(t, output, "No accounts configured.")
	assert.Contains(t, output, "No campaigns yet.")
}

func TestRenderProgressBar(t *testing.T) {
	t.Parallel()

	s := newStyles()
	tests := []struct {
		name    string
		percent float64
		filled  int
	}{
		{name: "empty", percent: 0, filled: 0},
		{name: "half", percent: 50, filled: 12},
		{name: "full", percent: 100, filled: 24},
		{name: "clamped", percent: 140, filled: 24},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bar := renderProgressBar(tc.percent, barWidth, s)
			assert.Equal(t, tc.filled, strings.Count(bar, "="))
			assert.Equal(t, barWidth-tc.filled, strings.Count(bar, "-"))
		})
	}
}

func TestFormatCreated(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	assert.Empty(t, formatCreated(time.Time{}, now))
	assert.Equal(t, "created just now", formatCreated(now.Add(-10*time.Minute), now))
	assert.Equal(t, "created 1 hour ago", formatCreated(now.Add(-90*time.Minute), now))
	assert.Equal(t, "created 5 hours ago", formatCreated(now.Add(-5*time.Hour), now))
	assert.Equal(t, "created 1 day ago", formatCreated(now.Add(-30*time.Hour), now))
	assert.Equal(t, "created 11:00 on 14 Feb", formatCreated(now, time.Time{}))
}
