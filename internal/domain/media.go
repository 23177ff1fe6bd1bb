package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MediaKind identifies which media slot of a catalog entry an upload fills.
type MediaKind string

const (
	MediaVideo  MediaKind = "video"
	MediaPoster MediaKind = "poster"
)

var ErrUnknownMediaKind = errors.New("unknown media kind")

// ParseMediaKind accepts "video" or "poster" (case-insensitive).
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(s))) {
	case MediaVideo:
		return MediaVideo, nil
	case MediaPoster:
		return MediaPoster, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMediaKind, s)
}

// Field is the catalog document field the kind's URL is stored in.
func (k MediaKind) Field() string {
	if k == MediaPoster {
		return FieldVideoPosterURL
	}
	return FieldVideoURL
}
