package toml

import "fmt"

const (
	currentAccountsSchemaVersion  = 1
	currentCampaignsSchemaVersion = 1
	currentChunksSchemaVersion    = 1
	currentHistorySchemaVersion   = 1
)

func checkVersion(label string, version int, current int) error {
	if version > current {
		return fmt.Errorf("unsupported %s schema version %d (current %d)", label, version, current)
	}

	return nil
}

type accountsFileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *accountsFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentAccountsSchemaVersion
	}
}

func (s accountsFileSchema) validateVersion() error {
	return checkVersion("accounts", s.Version, currentAccountsSchemaVersion)
}

type accountSchema struct {
	Identity  string `toml:"identity"`
	Secret    string `toml:"secret,omitempty"`
	SecretRef string `toml:"secret_ref,omitempty"`
	Proxy     string `toml:"proxy,omitempty"`
	TOTPSeed  string `toml:"totp_seed,omitempty"`
	TOTPRef   string `toml:"totp_ref,omitempty"`
}

type campaignsFileSchema struct {
	Version   int                       `toml:"version"`
	Campaigns map[string]campaignSchema `toml:"campaigns"`
}

func (s *campaignsFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentCampaignsSchemaVersion
	}
	if s.Campaigns == nil {
		s.Campaigns = map[string]campaignSchema{}
	}
}

func (s campaignsFileSchema) validateVersion() error {
	return checkVersion("campaigns", s.Version, currentCampaignsSchemaVersion)
}

type campaignSchema struct {
	Name            string                  `toml:"name"`
	Status          string                  `toml:"status"`
	CreatedAt       string                  `toml:"created_at"`
	MessageTemplate string                  `toml:"message_template"`
	Stats           campaignStatsSchema     `toml:"stats"`
	Targets         map[string]targetSchema `toml:"targets"`
}

type campaignStatsSchema struct {
	TotalTargets int `toml:"total_targets"`
	Sent         int `toml:"sent"`
	Errors       int `toml:"errors"`
}

type targetSchema struct {
	Status         string `toml:"status"`
	ChunkID        string `toml:"chunk_id,omitempty"`
	ChunkSource    string `toml:"chunk_source,omitempty"`
	ArtifactPath   string `toml:"artifact_path,omitempty"`
	MediaID        string `toml:"media_id,omitempty"`
	PostCode       string `toml:"post_code,omitempty"`
	PostURL        string `toml:"post_url,omitempty"`
	PersonalizedAt string `toml:"personalized_at,omitempty"`
	SentAt         string `toml:"sent_at,omitempty"`
	UpdatedAt      string `toml:"updated_at,omitempty"`
	Error          string `toml:"error,omitempty"`
}

type chunksFileSchema struct {
	Version int                    `toml:"version"`
	Chunks  map[string]chunkSchema `toml:"chunks"`
}

func (s *chunksFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentChunksSchemaVersion
	}
	if s.Chunks == nil {
		s.Chunks = map[string]chunkSchema{}
	}
}

func (s chunksFileSchema) validateVersion() error {
	return checkVersion("chunks", s.Version, currentChunksSchemaVersion)
}

type chunkSchema struct {
	Filename    string  `toml:"filename"`
	Source      string  `toml:"source"`
	StartOffset float64 `toml:"start_offset"`
	Duration    float64 `toml:"duration"`
	CreatedAt   string  `toml:"created_at"`
}

type historyFileSchema struct {
	Version int                        `toml:"version"`
	Users   map[string]selectionSchema `toml:"users"`
	Log     []selectionLogSchema       `toml:"log"`
}

func (s *historyFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentHistorySchemaVersion
	}
	if s.Users == nil {
		s.Users = map[string]selectionSchema{}
	}
}

func (s historyFileSchema) validateVersion() error {
	return checkVersion("selection history", s.Version, currentHistorySchemaVersion)
}

type selectionSchema struct {
	FirstSelected string `toml:"first_selected"`
	LastSelected  string `toml:"last_selected"`
	TimesSelected int    `toml:"times_selected"`
}

type selectionLogSchema struct {
	Timestamp string   `toml:"timestamp"`
	Count     int      `toml:"count"`
	Usernames []string `toml:"usernames"`
	Dataset   string   `toml:"dataset"`
}
