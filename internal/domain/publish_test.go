package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCodeFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://instagram.com/p/Cx1_-a/", want: "Cx1_-a"},
		{url: "https://www.instagram.com/reel/Cx1a?igsh=abc", want: "Cx1a"},
		{url: "https://instagram.com/night.owl/p/Cx1a/", want: "Cx1a"},
		{url: "https://instagram.com/stories/night.owl/1", wantErr: true},
		{url: "https://instagram.com/p/", wantErr: true},
		{url: "https://instagram.com/p/../../etc", wantErr: true},
	}

	for _, tc := range tests {
		got, err := PostCodeFromURL(tc.url)
		if tc.wantErr {
			require.Error(t, err, tc.url)
			continue
		}
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.want, got)
	}
}

func TestMediaKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "video", MediaVideo.String())
	assert.Equal(t, "unknown", MediaKind(0).String())
}
