package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/ghostreel/internal/domain"
)

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json object",
			file:    "followers.json",
			content: `{"users":[{"username":"@lucky.user","followers":1200,"avg_engagement":3.5,"post_hashtags":["#travel"]},{"username":"  "},{"username":"../etc/passwd"}]}`,
		},
		{
			name:    "json list",
			file:    "followers.json",
			content: `[{"username":"lucky.user","followers":1200,"avg_engagement":3.5,"post_hashtags":["#travel"]}]`,
		},
		{
			name: "yaml object",
			file: "followers.yaml",
			content: `users:
  - username: lucky.user
    followers: 1200
    avg_engagement: 3.5
    post_hashtags: ["#travel"]
`,
		},
		{
			name: "yaml list",
			file: "followers.yml",
			content: `- username: "@lucky.user"
  followers: 1200
  avg_engagement: 3.5
  post_hashtags: ["#travel"]
`,
		},
	}

	want := []domain.Profile{{Username: "lucky.user", Followers: 1200, AvgEngagement: 3.5, PostHashtags: []string{"#travel"}}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profiles, err := Loader{}.Load(context.Background(), writeDataset(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, want, profiles)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Loader{}.Load(context.Background(), "")
	require.Error(t, err)

	_, err = Loader{}.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Loader{}.Load(context.Background(), writeDataset(t, "broken.json", `{"users":`))
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Loader{}.Load(ctx, writeDataset(t, "ok.json", `[]`))
	require.ErrorIs(t, err, context.Canceled)
}
