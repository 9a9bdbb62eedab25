// Package byline parses free-text author lists such as
// "Alice, Sam [bob], Carol (carol)" into pseuds.
package byline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

// Directory is the subset of the store the parser reads.
type Directory interface {
	FindPseudsByName(ctx context.Context, name string) ([]domain.Pseud, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
}

// Parser is the default domain.BylineParser.
type Parser struct {
	dir Directory
}

var _ domain.BylineParser = (*Parser)(nil)

// New creates a parser reading from dir.
func New(dir Directory) *Parser {
	return &Parser{dir: dir}
}

// qualified matches "name [login]" and "name (login)".
var qualified = regexp.MustCompile(`^(.+?)\s*(?:\[([^\]]+)\]|\(([^)]+)\))$`)

// Fragment is one comma-separated entry of a byline.
type Fragment struct {
	Raw   string
	Name  string
	Login string
}

// Split breaks text into trimmed, non-empty fragments.
func Split(text string) []Fragment {
	var out []Fragment
	for raw := range strings.SplitSeq(text, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		f := Fragment{Raw: raw, Name: raw}
		if m := qualified.FindStringSubmatch(raw); m != nil {
			f.Name = strings.TrimSpace(m[1])
			f.Login = strings.TrimSpace(m[2] + m[3])
		}
		out = append(out, f)
	}
	return out
}

// Parse resolves every fragment of text. A fragment matching no pseud is
// reported as invalid; one matching several is reported with all of its
// candidates as ambiguous.
func (p *Parser) Parse(ctx context.Context, text string) (domain.BylineResult, error) {
	result := domain.BylineResult{
		Pseuds:    []domain.Pseud{},
		Invalid:   []string{},
		Ambiguous: []domain.Pseud{},
	}
	seen := make(map[string]bool)

	for _, f := range Split(text) {
		candidates, err := p.candidates(ctx, f)
		if err != nil {
			return domain.BylineResult{}, fmt.Errorf("resolve %q: %w", f.Raw, err)
		}
		switch len(candidates) {
		case 0:
			result.Invalid = append(result.Invalid, f.Raw)
		case 1:
			if !seen[candidates[0].ID] {
				seen[candidates[0].ID] = true
				result.Pseuds = append(result.Pseuds, candidates[0])
			}
		default:
			result.Ambiguous = append(result.Ambiguous, candidates...)
		}
	}
	return result, nil
}

func (p *Parser) candidates(ctx context.Context, f Fragment) ([]domain.Pseud, error) {
	pseuds, err := p.dir.FindPseudsByName(ctx, f.Name)
	if err != nil {
		return nil, err
	}
	if f.Login == "" {
		return pseuds, nil
	}

	user, err := p.dir.GetUserByLogin(ctx, f.Login)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var owned []domain.Pseud
	for _, ps := range pseuds {
		if ps.UserID == user.ID {
			owned = append(owned, ps)
		}
	}
	return owned, nil
}
