// Package mention resolves inline user/room/command references to their
// display form, and memoizes the answers for the life of an editing session.
package mention

import (
	"net/url"
	"strings"

	"charm.land/lipgloss/v2"
)

// AtRoomDisplay is the fixed display text of the reserved at-room mention,
// which addresses everyone in the room and carries no identifier.
const AtRoomDisplay = "@room"

// Kind classifies a mention target by its sigil.
type Kind int

const (
	User    Kind = iota // '@'
	Room                // '#'
	Command             // '/'
	AtRoom
)

// Target is a parsed mention URL.
type Target struct {
	Kind Kind
	ID   string
}

// ParseTarget parses the permalink convention scheme://host/#/<sigil>id.
// ok == false for anything that is not a mention permalink; such links are
// rendered as plain links, not mentions.
func ParseTarget(raw string) (Target, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Fragment == "" {
		return Target{}, false
	}
	frag := strings.TrimPrefix(u.Fragment, "/")
	if len(frag) < 2 {
		return Target{}, false
	}
	id := frag[1:]
	switch frag[0] {
	case '@':
		return Target{Kind: User, ID: id}, true
	case '#':
		return Target{Kind: Room, ID: id}, true
	case '/':
		return Target{Kind: Command, ID: id}, true
	}
	return Target{}, false
}

// Display is the resolved visual form of a mention.
type Display struct {
	Text  string
	Style lipgloss.Style
	Link  string
}

// Resolver is the external capability that decides how a mention looks.
// Implementations must be comparable (typically a pointer), because cache
// equality is delegate equality.
type Resolver interface {
	Resolve(text, url string) Display
	ResolveAtRoom() Display
}
