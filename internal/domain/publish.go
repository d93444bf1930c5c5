package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type UserHandle struct {
	ID       string
	Username string
}

// UserTag positions a tagged user on the clip. X and Y are in [0, 1].
type UserTag struct {
	User UserHandle
	X    float64
	Y    float64
}

type PublishRequest struct {
	VideoPath string
	Caption   string
	Tags      []UserTag
}

// UserInfo is the public profile of a platform user.
type UserInfo struct {
	ID            string
	Username      string
	FullName      string
	Biography     string
	Followers     int
	Following     int
	MediaCount    int
	Private       bool
	Verified      bool
	ProfilePicURL string
	ExternalURL   string
	Category      string
}

type MediaKind int

const (
	MediaPhoto MediaKind = 1
	MediaVideo MediaKind = 2
	MediaAlbum MediaKind = 8
)

func (k MediaKind) String() string {
	switch k {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	case MediaAlbum:
		return "album"
	default:
		return "unknown"
	}
}

// Post is one published media item as listed on a profile.
type Post struct {
	Ref           PostRef
	Kind          MediaKind
	Caption       string
	Likes         int
	Comments      int
	TakenAt       time.Time
	ThumbnailURL  string
	VideoURL      string
	VideoDuration float64
}

// MaxRecentPosts caps how many posts one listing returns.
const MaxRecentPosts = 50

// PostCodeFromURL extracts the short code from a post or reel URL such as
// https://instagram.com/p/Cx1_-a/ or https://instagram.com/reel/Cx1_-a.
func PostCodeFromURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse post url: %w", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] != "p" && segments[i] != "reel" {
			continue
		}
		code := segments[i+1]
		if code != "" && strings.IndexFunc(code, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-')
		}) < 0 {
			return code, nil
		}
	}

	return "", fmt.Errorf("not a post url: %q", raw)
}
