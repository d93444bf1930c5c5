package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

// Loader reads scraped follower datasets. Files are either a bare list of
// profiles or an object with a "users" list, in JSON or YAML.
type Loader struct{}

var _ ports.DatasetLoader = Loader{}

type datasetFile struct {
	Users []domain.Profile `json:"users" yaml:"users"`
}

func (Loader) Load(ctx context.Context, path string) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New("dataset path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var profiles []domain.Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		profiles, err = decodeYAML(data)
	default:
		profiles, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}

	return cleanProfiles(profiles), nil
}

func decodeJSON(data []byte) ([]domain.Profile, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var profiles []domain.Profile
		if err := json.Unmarshal(data, &profiles); err != nil {
			return nil, err
		}
		return profiles, nil
	}

	var file datasetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Users, nil
}

func decodeYAML(data []byte) ([]domain.Profile, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var profiles []domain.Profile
		if err := node.Decode(&profiles); err != nil {
			return nil, err
		}
		return profiles, nil
	}

	var file datasetFile
	if err := node.Decode(&file); err != nil {
		return nil, err
	}
	return file.Users, nil
}

// cleanProfiles strips a leading "@" and drops entries whose username is
// missing or not a valid handle.
func cleanProfiles(profiles []domain.Profile) []domain.Profile {
	out := make([]domain.Profile, 0, len(profiles))
	for _, profile := range profiles {
		profile.Username = strings.TrimPrefix(strings.TrimSpace(profile.Username), "@")
		if domain.ValidateIdentity(profile.Username) != nil {
			continue
		}
		out = append(out, profile)
	}
	return out
}
