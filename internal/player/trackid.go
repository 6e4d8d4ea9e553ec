package player

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidURI is returned by ParseURI for identifiers it does not
// recognise.
var ErrInvalidURI = errors.New("invalid spotify uri")

// ItemType is the kind of item a URI points at.
type ItemType string

const (
	ItemTrack    ItemType = "track"
	ItemAlbum    ItemType = "album"
	ItemPlaylist ItemType = "playlist"
	ItemArtist   ItemType = "artist"
)

// URI is a parsed item identifier.
type URI struct {
	Type ItemType
	// ID is the 22 character base62 id.
	ID string
}

// String returns the canonical spotify:<type>:<id> form.
func (u URI) String() string {
	return "spotify:" + string(u.Type) + ":" + u.ID
}

var uriPattern = regexp.MustCompile(
	`^(?:spotify:|https?://(?:open|play)\.spotify\.com/)(?:embed/?)?(album|track|playlist|artist)(?::|/)([0-9a-zA-Z]{22})(?:$|[?#/])`,
)

// ParseURI accepts spotify:<type>:<id> and open.spotify.com or
// play.spotify.com links, with an optional embed/ segment and trailing
// query string.
func ParseURI(s string) (URI, error) {
	m := uriPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return URI{}, fmt.Errorf("%w: %q", ErrInvalidURI, s)
	}
	return URI{Type: ItemType(m[1]), ID: m[2]}, nil
}
