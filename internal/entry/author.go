package entry

import (
	"fmt"
	"strings"

	"github.com/hpungsan/hl/internal/errors"
)

// AIPrefix is the string-form prefix shared by all AI author kinds.
const AIPrefix = "ai:"

type authorClass int

const (
	authorUnknown authorClass = iota
	authorHuman
	authorAI
)

// AuthorKind is a closed variant describing who captured an entry: a human
// through interactive editing, or an AI agent through the MCP surface. The
// zero value is invalid so an unset author cannot slip into the store.
type AuthorKind struct {
	class authorClass
	agent string
}

// Human returns the author kind for interactive human capture.
func Human() AuthorKind {
	return AuthorKind{class: authorHuman}
}

// AI returns the author kind for the named agent.
func AI(agent string) AuthorKind {
	return AuthorKind{class: authorAI, agent: strings.TrimSpace(agent)}
}

// ParseAuthorKind parses the persisted string form ("human" or
// "ai:<agent>"). Anything else fails validation.
func ParseAuthorKind(s string) (AuthorKind, error) {
	s = strings.TrimSpace(s)
	if s == "human" {
		return Human(), nil
	}
	if agent, ok := strings.CutPrefix(s, AIPrefix); ok {
		a := AI(agent)
		if !a.Valid() {
			return AuthorKind{}, errors.NewValidation(fmt.Sprintf("author kind %q has no agent name", s))
		}
		return a, nil
	}
	return AuthorKind{}, errors.NewValidation(fmt.Sprintf("unknown author kind %q", s))
}

// Valid reports whether the kind is one of the closed variants. AI kinds
// additionally require a non-empty agent name.
func (a AuthorKind) Valid() bool {
	switch a.class {
	case authorHuman:
		return true
	case authorAI:
		return a.agent != ""
	default:
		return false
	}
}

// IsAI reports whether the entry was captured by an AI agent.
func (a AuthorKind) IsAI() bool {
	return a.class == authorAI
}

// Agent returns the agent name for AI kinds, "" otherwise.
func (a AuthorKind) Agent() string {
	if a.class != authorAI {
		return ""
	}
	return a.agent
}

// String returns the persisted form: "human" or "ai:<agent>".
func (a AuthorKind) String() string {
	switch a.class {
	case authorHuman:
		return "human"
	case authorAI:
		return AIPrefix + a.agent
	default:
		return ""
	}
}

// ValidAuthorFilter reports whether s is usable as a listing filter. A
// filter is either a full author kind ("human", "ai:claude") or the bare
// prefix "ai", which matches every agent.
func ValidAuthorFilter(s string) bool {
	if s == "ai" {
		return true
	}
	_, err := ParseAuthorKind(s)
	return err == nil
}
