package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type CampaignID string

type CampaignState string

const CampaignActive CampaignState = "active"

type TargetStatus string

const (
	TargetPending      TargetStatus = "pending"
	TargetPersonalized TargetStatus = "personalized"
	TargetSent         TargetStatus = "sent"
	TargetError        TargetStatus = "error"
)

const DefaultMessageTemplate = "SYSTEM DIAGNOSTIC INITIATED\nACCESS: vhs-ghost.com/{username}\nTIME REMAINING: 72:00:00"

func (s TargetStatus) Valid() bool {
	switch s {
	case TargetPending, TargetPersonalized, TargetSent, TargetError:
		return true
	default:
		return false
	}
}

// Deliverable reports whether a workflow may still pick the target up.
func (s TargetStatus) Deliverable() bool {
	return s == TargetPending || s == TargetPersonalized
}

type PostRef struct {
	MediaID string
	Code    string
	URL     string
}

func (p PostRef) IsZero() bool {
	return p.MediaID == "" && p.Code == "" && p.URL == ""
}

type TargetRecord struct {
	Status         TargetStatus
	ChunkID        string
	ChunkSource    string
	ArtifactPath   string
	Post           PostRef
	PersonalizedAt time.Time
	SentAt         time.Time
	UpdatedAt      time.Time
	Error          string
}

type CampaignStats struct {
	Sent   int
	Errors int
}

type Campaign struct {
	ID              CampaignID
	Name            string
	State           CampaignState
	CreatedAt       time.Time
	MessageTemplate string
	Stats           CampaignStats
	Targets         map[string]TargetRecord
}

func (c Campaign) Validate() error {
	if strings.TrimSpace(string(c.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	for target, record := range c.Targets {
		if !record.Status.Valid() {
			return fmt.Errorf("target %s: invalid status %q", target, record.Status)
		}
	}

	return nil
}

// RenderMessage substitutes {username} in the campaign template.
func (c Campaign) RenderMessage(target string) string {
	template := c.MessageTemplate
	if strings.TrimSpace(template) == "" {
		template = DefaultMessageTemplate
	}

	return strings.ReplaceAll(template, "{username}", target)
}

// TargetsWith returns target identities whose status is one of statuses, sorted.
func (c Campaign) TargetsWith(statuses ...TargetStatus) []string {
	targets := make([]string, 0, len(c.Targets))
	for target, record := range c.Targets {
		for _, status := range statuses {
			if record.Status == status {
				targets = append(targets, target)
				break
			}
		}
	}
	sort.Strings(targets)

	return targets
}

type CampaignSummary struct {
	ID             CampaignID
	Name           string
	State          CampaignState
	CreatedAt      time.Time
	Total          int
	Pending        int
	Completed      int
	Failed         int
	CompletionRate string
}

// Summarize folds target statuses into three buckets. Personalized targets
// still count as pending.
func (c Campaign) Summarize() CampaignSummary {
	summary := CampaignSummary{
		ID:        c.ID,
		Name:      c.Name,
		State:     c.State,
		CreatedAt: c.CreatedAt,
		Total:     len(c.Targets),
	}

	for _, record := range c.Targets {
		switch record.Status {
		case TargetPending, TargetPersonalized:
			summary.Pending++
		case TargetSent:
			summary.Completed++
		case TargetError:
			summary.Failed++
		}
	}

	summary.CompletionRate = CompletionRate(summary.Completed, summary.Total)
	return summary
}

func CompletionRate(completed, total int) string {
	if total <= 0 {
		return "0%"
	}

	return fmt.Sprintf("%.1f%%", float64(completed)/float64(total)*100)
}
