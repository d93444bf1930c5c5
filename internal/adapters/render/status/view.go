package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

// Snapshot is everything the overview shows. Building it must not trigger any
// account authentication.
type Snapshot struct {
	Pool      domain.PoolStatus
	Campaigns []domain.CampaignSummary
	Chunks    int
}

type RenderOptions struct {
	Now time.Time
}

func renderView(snapshot Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Ghost Reel Status"),
		s.header.Render(fmt.Sprintf("accounts: %d (%d authenticated)  chunks: %d",
			len(snapshot.Pool.Accounts), snapshot.Pool.AuthenticatedCount(), snapshot.Chunks)),
	}

	if len(snapshot.Pool.Accounts) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
	} else {
		accounts := make([]string, 0, len(snapshot.Pool.Accounts))
		for i, account := range snapshot.Pool.Accounts {
			accounts = append(accounts, accountLine(account, i == snapshot.Pool.Cursor, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, accounts...)))
	}

	lines = append(lines, s.section.Render(s.header.Render(fmt.Sprintf("campaigns: %d", len(snapshot.Campaigns)))))
	if len(snapshot.Campaigns) == 0 {
		lines = append(lines, s.empty.Render("No campaigns yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, summary := range snapshot.Campaigns {
		lines = append(lines, s.section.Render(renderCampaign(summary, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func accountLine(account domain.AccountStatus, next bool, s styles) string {
	state := s.idle.Render("not authenticated")
	if account.Authenticated {
		state = s.ok.Render("authenticated")
	}

	parts := []string{s.account.Render(string(account.ID)), state}
	if account.ProxyConfigured {
		parts = append(parts, s.detail.Render("proxy"))
	}
	if account.InUse {
		parts = append(parts, s.warning.Render("[in use]"))
	}
	if next {
		parts = append(parts, s.header.Render("<- next"))
	}

	return strings.Join(parts, "  ")
}

func renderCampaign(summary domain.CampaignSummary, opts RenderOptions, s styles) string {
	title := s.campaign.Render(fmt.Sprintf("%s (%s)", summary.Name, summary.ID))

	sentPercent := 0.0
	if summary.Total > 0 {
		sentPercent = float64(summary.Completed) / float64(summary.Total) * 100
	}
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(sentPercent, 0, 100))

	progress := lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderProgressBar(sentPercent, barWidth, s),
		" ",
		percentStyle.Render(summary.CompletionRate+" sent"),
	)

	counts := s.countKey.Render(fmt.Sprintf("%d sent · %d failed · %d pending of %d",
		summary.Completed, summary.Failed, summary.Pending, summary.Total))
	if summary.Failed > 0 {
		counts += " " + s.warning.Render("[errors]")
	}

	lines := []string{title, progress, counts}
	if created := formatCreated(summary.CreatedAt, opts.Now); created != "" {
		lines = append(lines, s.header.Render(created))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	filled = max(0, min(filled, width))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatCreated(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	if now.IsZero() || createdAt.After(now) {
		return "created " + createdAt.Format("15:04 on 02 Jan")
	}

	age := now.Sub(createdAt)
	switch {
	case age < time.Hour:
		return "created just now"
	case age < 24*time.Hour:
		return "created " + plural(int(age.Hours()), "hour") + " ago"
	default:
		return "created " + plural(int(age.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func interpolateColor(value, lo, hi float64) lipgloss.Color {
	if hi == lo {
		return lipgloss.Color("255")
	}

	normalized := (value - lo) / (hi - lo)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// 240 is the faded end of the greyscale ramp, 255 the brightest.
	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
