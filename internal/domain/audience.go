package domain

import (
	"strings"
	"time"
)

type Profile struct {
	Username      string   `json:"username" yaml:"username"`
	FullName      string   `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Followers     int      `json:"followers" yaml:"followers"`
	Following     int      `json:"following" yaml:"following"`
	PostsCount    int      `json:"posts_count" yaml:"posts_count"`
	AvgEngagement float64  `json:"avg_engagement" yaml:"avg_engagement"`
	Biography     string   `json:"biography,omitempty" yaml:"biography,omitempty"`
	PostHashtags  []string `json:"post_hashtags,omitempty" yaml:"post_hashtags,omitempty"`
}

// FilterCriteria narrows a dataset. Zero values disable the matching check.
type FilterCriteria struct {
	MinFollowers  int
	MaxFollowers  int
	MinEngagement float64
	RequireBio    bool
	Hashtags      []string
}

func (c FilterCriteria) Match(p Profile) bool {
	if c.MinFollowers > 0 && p.Followers < c.MinFollowers {
		return false
	}
	if c.MaxFollowers > 0 && p.Followers > c.MaxFollowers {
		return false
	}
	if c.MinEngagement > 0 && p.AvgEngagement < c.MinEngagement {
		return false
	}
	if c.RequireBio && strings.TrimSpace(p.Biography) == "" {
		return false
	}
	if len(c.Hashtags) == 0 {
		return true
	}

	have := make(map[string]struct{}, len(p.PostHashtags))
	for _, tag := range p.PostHashtags {
		have[normalizeHashtag(tag)] = struct{}{}
	}
	for _, tag := range c.Hashtags {
		if _, ok := have[normalizeHashtag(tag)]; ok {
			return true
		}
	}

	return false
}

func normalizeHashtag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

type SelectionRecord struct {
	FirstSelected time.Time
	LastSelected  time.Time
	TimesSelected int
}

type SelectionLogEntry struct {
	Timestamp time.Time
	Count     int
	Usernames []string
	Dataset   string
}

type SelectionHistory struct {
	Users map[string]SelectionRecord
	Log   []SelectionLogEntry
}

// Record marks usernames as selected at now.
func (h *SelectionHistory) Record(now time.Time, dataset string, usernames []string) {
	if h.Users == nil {
		h.Users = make(map[string]SelectionRecord, len(usernames))
	}

	for _, username := range usernames {
		record, ok := h.Users[username]
		if !ok {
			record.FirstSelected = now
		}
		record.TimesSelected++
		record.LastSelected = now
		h.Users[username] = record
	}

	h.Log = append(h.Log, SelectionLogEntry{
		Timestamp: now,
		Count:     len(usernames),
		Usernames: append([]string(nil), usernames...),
		Dataset:   dataset,
	})
}

func (h SelectionHistory) Used(username string) bool {
	_, ok := h.Users[username]
	return ok
}
