package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "GHOST"
	homeDirEnv = "GHOST_HOME"
)

const (
	KeyAccountsPath      = "accounts.path"
	KeySessionsDir       = "sessions.dir"
	KeySecretsDir        = "secrets.dir"
	KeyCampaignsPath     = "campaigns.path"
	KeyHistoryPath       = "history.path"
	KeyDatasetPath       = "audience.dataset"
	KeyRawDir            = "media.raw_dir"
	KeyChunkDir          = "media.chunk_dir"
	KeyCampaignDir       = "media.campaign_dir"
	KeyLogoPath          = "media.logo"
	KeyGatewayURL        = "gateway.url"
	KeyGatewayTimeout    = "gateway.timeout"
	KeyDeliveryWorkers   = "workers.delivery"
	KeyEncodeWorkers     = "workers.encode"
	KeyFFmpeg            = "encoder.ffmpeg"
	KeyFFprobe           = "encoder.ffprobe"
	KeyFont              = "encoder.font"
	KeyFallbackFont      = "encoder.fallback_font"
	KeyPublishRetryDelay = "delivery.publish_retry_delay"
	KeyShareRetryDelay   = "delivery.share_retry_delay"
	KeyShareMessageGap   = "delivery.share_message_gap"
	KeyLogLevel          = "log.level"
)

type MediaConfig struct {
	RawDir      string
	ChunkDir    string
	CampaignDir string
	LogoPath    string
}

type GatewayConfig struct {
	URL     string
	Timeout time.Duration
}

type WorkersConfig struct {
	Delivery int
	Encode   int
}

type EncoderConfig struct {
	FFmpeg       string
	FFprobe      string
	Font         string
	FallbackFont string
}

type DeliveryConfig struct {
	PublishRetryDelay time.Duration
	ShareRetryDelay   time.Duration
	ShareMessageGap   time.Duration
}

type Config struct {
	HomeDir       string
	ConfigFile    string
	AccountsPath  string
	SessionsDir   string
	SecretsDir    string
	CampaignsPath string
	HistoryPath   string
	DatasetPath   string
	Media         MediaConfig
	Gateway       GatewayConfig
	Workers       WorkersConfig
	Encoder       EncoderConfig
	Delivery      DeliveryConfig
	LogLevel      string
}

// Default returns the configuration used when no config file exists. All
// paths live below homeDir.
func Default(homeDir string) Config {
	media := filepath.Join(homeDir, "media")

	return Config{
		HomeDir:       homeDir,
		AccountsPath:  filepath.Join(homeDir, "accounts.toml"),
		SessionsDir:   filepath.Join(homeDir, "sessions"),
		SecretsDir:    filepath.Join(homeDir, "secrets"),
		CampaignsPath: filepath.Join(homeDir, "campaigns.toml"),
		HistoryPath:   filepath.Join(homeDir, "selection_history.toml"),
		DatasetPath:   filepath.Join(homeDir, "datasets", "users.json"),
		Media: MediaConfig{
			RawDir:      filepath.Join(media, "raw"),
			ChunkDir:    filepath.Join(media, "chunks"),
			CampaignDir: filepath.Join(media, "campaign_videos"),
			LogoPath:    filepath.Join(media, "logo.png"),
		},
		Gateway: GatewayConfig{
			URL:     "http://127.0.0.1:8765",
			Timeout: 60 * time.Second,
		},
		Workers: WorkersConfig{
			Delivery: 3,
			Encode:   2,
		},
		Encoder: EncoderConfig{
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			Font:         "/usr/share/fonts/truetype/dejavu/DejaVuSansMono-Bold.ttf",
			FallbackFont: "/usr/share/fonts/truetype/liberation/LiberationMono-Bold.ttf",
		},
		Delivery: DeliveryConfig{
			PublishRetryDelay: 5 * time.Second,
			ShareRetryDelay:   3 * time.Second,
			ShareMessageGap:   2 * time.Second,
		},
		LogLevel: "warn",
	}
}

// HomeDir resolves the state directory: $GHOST_HOME or ~/.ghost.
func HomeDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(homeDirEnv)); dir != "" {
		return expandPath(dir)
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(userHome, ".ghost"), nil
}

// Load registers defaults on v, reads config.toml from the home directory
// when present and applies GHOST_* environment overrides.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := HomeDir()
	if err != nil {
		return Config{}, err
	}

	setDefaults(v, Default(homeDir))

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(homeDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		HomeDir:       homeDir,
		ConfigFile:    v.ConfigFileUsed(),
		DatasetPath:   v.GetString(KeyDatasetPath),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		Gateway:       GatewayConfig{URL: strings.TrimRight(strings.TrimSpace(v.GetString(KeyGatewayURL)), "/"), Timeout: v.GetDuration(KeyGatewayTimeout)},
		Workers:       WorkersConfig{Delivery: v.GetInt(KeyDeliveryWorkers), Encode: v.GetInt(KeyEncodeWorkers)},
		Encoder:       EncoderConfig{FFmpeg: v.GetString(KeyFFmpeg), FFprobe: v.GetString(KeyFFprobe), Font: v.GetString(KeyFont), FallbackFont: v.GetString(KeyFallbackFont)},
		Delivery:      DeliveryConfig{PublishRetryDelay: v.GetDuration(KeyPublishRetryDelay), ShareRetryDelay: v.GetDuration(KeyShareRetryDelay), ShareMessageGap: v.GetDuration(KeyShareMessageGap)},
		AccountsPath:  v.GetString(KeyAccountsPath),
		SessionsDir:   v.GetString(KeySessionsDir),
		SecretsDir:    v.GetString(KeySecretsDir),
		CampaignsPath: v.GetString(KeyCampaignsPath),
		HistoryPath:   v.GetString(KeyHistoryPath),
		Media: MediaConfig{
			RawDir:      v.GetString(KeyRawDir),
			ChunkDir:    v.GetString(KeyChunkDir),
			CampaignDir: v.GetString(KeyCampaignDir),
			LogoPath:    v.GetString(KeyLogoPath),
		},
	}

	for _, path := range []*string{
		&cfg.AccountsPath, &cfg.SessionsDir, &cfg.SecretsDir, &cfg.CampaignsPath, &cfg.HistoryPath, &cfg.DatasetPath,
		&cfg.Media.RawDir, &cfg.Media.ChunkDir, &cfg.Media.CampaignDir, &cfg.Media.LogoPath,
	} {
		expanded, err := expandPath(*path)
		if err != nil {
			return Config{}, err
		}
		*path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Gateway.URL == "" {
		return errors.New("gateway.url is required")
	}
	if c.Workers.Delivery < 1 {
		return fmt.Errorf("workers.delivery must be at least 1, got %d", c.Workers.Delivery)
	}
	if c.Workers.Encode < 1 {
		return fmt.Errorf("workers.encode must be at least 1, got %d", c.Workers.Encode)
	}
	if c.Delivery.PublishRetryDelay < 0 || c.Delivery.ShareRetryDelay < 0 || c.Delivery.ShareMessageGap < 0 {
		return errors.New("delivery delays must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault(KeyAccountsPath, d.AccountsPath)
	v.SetDefault(KeySessionsDir, d.SessionsDir)
	v.SetDefault(KeySecretsDir, d.SecretsDir)
	v.SetDefault(KeyCampaignsPath, d.CampaignsPath)
	v.SetDefault(KeyHistoryPath, d.HistoryPath)
	v.SetDefault(KeyDatasetPath, d.DatasetPath)
	v.SetDefault(KeyRawDir, d.Media.RawDir)
	v.SetDefault(KeyChunkDir, d.Media.ChunkDir)
	v.SetDefault(KeyCampaignDir, d.Media.CampaignDir)
	v.SetDefault(KeyLogoPath, d.Media.LogoPath)
	v.SetDefault(KeyGatewayURL, d.Gateway.URL)
	v.SetDefault(KeyGatewayTimeout, d.Gateway.Timeout)
	v.SetDefault(KeyDeliveryWorkers, d.Workers.Delivery)
	v.SetDefault(KeyEncodeWorkers, d.Workers.Encode)
	v.SetDefault(KeyFFmpeg, d.Encoder.FFmpeg)
	v.SetDefault(KeyFFprobe, d.Encoder.FFprobe)
	v.SetDefault(KeyFont, d.Encoder.Font)
	v.SetDefault(KeyFallbackFont, d.Encoder.FallbackFont)
	v.SetDefault(KeyPublishRetryDelay, d.Delivery.PublishRetryDelay)
	v.SetDefault(KeyShareRetryDelay, d.Delivery.ShareRetryDelay)
	v.SetDefault(KeyShareMessageGap, d.Delivery.ShareMessageGap)
	v.SetDefault(KeyLogLevel, d.LogLevel)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(userHome, strings.TrimPrefix(path, "~"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	return filepath.Clean(absPath), nil
}
