package shared

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsePlaylistID extracts the catalog playlist identifier from a reference.
//
// A reference is either a bare identifier ("908622995") or a link whose last path segment is the
// identifier ("https://www.deezer.com/en/playlist/908622995?utm_source=x"). Query strings,
// fragments and trailing slashes are ignored. References without a numeric trailing segment
// return [ErrInvalidReference].
func ParsePlaylistID(ref string) (string, error) {
	return parseID(ref)
}

// ParseTrackID extracts the catalog track identifier from a track link or bare id.
//
// It follows the same rules as [ParsePlaylistID].
func ParseTrackID(ref string) (string, error) {
	return parseID(ref)
}

func parseID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	path := strings.TrimRight(u.Path, "/")
	segment := path[strings.LastIndex(path, "/")+1:]
	if !isDigits(segment) {
		return "", fmt.Errorf("%w: no identifier in %q", ErrInvalidReference, ref)
	}
	return segment, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
