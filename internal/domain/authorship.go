package domain

import (
	"context"
	"fmt"
	"strings"
)

// PseudLookup resolves a pseud by id. Implementations return an error
// matching errors.ErrNotFound when the id does not resolve.
type PseudLookup interface {
	GetPseud(ctx context.Context, id string) (*Pseud, error)
}

// BylineParser turns free-text author designations into pseuds.
type BylineParser interface {
	Parse(ctx context.Context, text string) (BylineResult, error)
}

// BylineResult is what a BylineParser found in a byline.
type BylineResult struct {
	Pseuds    []Pseud  `json:"pseuds"`
	Invalid   []string `json:"invalid"`
	Ambiguous []Pseud  `json:"ambiguous"`
}

// AuthorInput is the raw author selection submitted with a series.
type AuthorInput struct {
	ExplicitIDs  []string `json:"ids"`
	AmbiguousIDs []string `json:"ambiguous_ids,omitempty"`
	Byline       *string  `json:"byline,omitempty"`
}

// AuthorAssignment is the resolved author set plus diagnostics. Invalid and
// Ambiguous never fail the call; the caller decides how to show them.
type AuthorAssignment struct {
	Authors   []Pseud  `json:"authors"`
	ToRemove  []Pseud  `json:"to_remove"`
	Invalid   []string `json:"invalid"`
	Ambiguous []Pseud  `json:"ambiguous"`
}

// HasDiagnostics reports whether the byline left anything unresolved.
func (a *AuthorAssignment) HasDiagnostics() bool {
	return len(a.Invalid) > 0 || len(a.Ambiguous) > 0
}

// ResolveAuthors builds the author set for a series from input. It never
// writes. Unknown explicit or ambiguous ids stop resolution with the lookup
// error. When actor is an authenticated user, ToRemove holds the actor's
// pseuds that did not make it into the final set.
func ResolveAuthors(ctx context.Context, lookup PseudLookup, parser BylineParser, input AuthorInput, actor Viewer) (*AuthorAssignment, error) {
	result := &AuthorAssignment{
		Authors:   []Pseud{},
		ToRemove:  []Pseud{},
		Invalid:   []string{},
		Ambiguous: []Pseud{},
	}

	var collected []Pseud
	for _, ids := range [][]string{input.ExplicitIDs, input.AmbiguousIDs} {
		for _, pseudID := range ids {
			p, err := lookup.GetPseud(ctx, pseudID)
			if err != nil {
				return nil, fmt.Errorf("resolve pseud %s: %w", pseudID, err)
			}
			collected = append(collected, *p)
		}
	}

	switch {
	case input.Byline == nil:
	case parser == nil:
		// Nothing can resolve the names, so the whole byline is unresolved.
		if text := strings.TrimSpace(*input.Byline); text != "" {
			result.Invalid = []string{text}
		}
	default:
		parsed, err := parser.Parse(ctx, *input.Byline)
		if err != nil {
			return nil, fmt.Errorf("parse byline: %w", err)
		}
		collected = append(collected, parsed.Pseuds...)
		if parsed.Invalid != nil {
			result.Invalid = parsed.Invalid
		}
		if parsed.Ambiguous != nil {
			result.Ambiguous = parsed.Ambiguous
		}
	}

	result.Authors = uniquePseuds(collected)

	if !actor.IsGuest() && len(actor.PseudIDs) > 0 {
		chosen := idSet(PseudIDs(result.Authors))
		for _, pseudID := range actor.PseudIDs {
			if chosen[pseudID] {
				continue
			}
			p, err := lookup.GetPseud(ctx, pseudID)
			if err != nil {
				return nil, fmt.Errorf("resolve actor pseud %s: %w", pseudID, err)
			}
			result.ToRemove = append(result.ToRemove, *p)
		}
	}

	return result, nil
}
