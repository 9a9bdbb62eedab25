package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/seriesd/internal/di/providers"
	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/id"
	"github.com/listenupapp/seriesd/internal/service"
	"github.com/listenupapp/seriesd/internal/store"
)

// SeedResult lists what the seed command wrote.
type SeedResult struct {
	Users  map[string]string `json:"users"` // login -> id
	Works  []string          `json:"works"`
	Series string            `json:"series"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write a small demo library",
		Long: `Create three users (alice, bob and the admin root), their pseuds, a few
tagged works and one series by alice and bob. Refuses to run twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.withSession(func(i do.Injector) error {
				storeHandle := do.MustInvoke[*providers.StoreHandle](i)
				svc := do.MustInvoke[*service.SeriesService](i)

				result, err := seed(cmd.Context(), storeHandle.Store, svc)
				if err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(result, func(w io.Writer) {
					printf(w, "seeded series %s\n", result.Series)
					for login, userID := range result.Users {
						printf(w, "  user %-6s %s\n", login, userID)
					}
				})
			})
		},
	}
}

type seedWork struct {
	title      string
	words      int
	restricted bool
	authors    []string // logins
	tags       []string
	age        time.Duration
}

func seed(ctx context.Context, st store.Store, svc *service.SeriesService) (*SeedResult, error) {
	if _, err := st.GetUserByLogin(ctx, "alice"); err == nil {
		return nil, domainerrors.AlreadyExistsf("login %q exists, the store is already seeded", "alice")
	} else if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	result := &SeedResult{Users: map[string]string{}, Works: []string{}}
	pseuds := map[string]domain.Pseud{}

	for _, u := range []struct {
		login, pseud string
		role         domain.Role
	}{
		{"alice", "Alice", domain.RoleMember},
		{"bob", "Bob", domain.RoleMember},
		{"root", "Moderator", domain.RoleAdmin},
	} {
		user := &domain.User{
			Syncable: domain.Syncable{ID: id.MustGenerate(id.PrefixUser), CreatedAt: now, UpdatedAt: now},
			Login:    u.login,
			Role:     u.role,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.login, err)
		}
		pseud := domain.Pseud{ID: id.MustGenerate(id.PrefixPseud), UserID: user.ID, Name: u.pseud}
		if err := st.CreatePseud(ctx, &pseud); err != nil {
			return nil, fmt.Errorf("create pseud %s: %w", u.pseud, err)
		}
		result.Users[u.login] = user.ID
		pseuds[u.login] = pseud
	}

	tags := map[string]domain.Tag{}
	for name, kind := range map[string]domain.TagKind{
		"Hyrule":            domain.TagKindFandom,
		"Link":              domain.TagKindCharacter,
		"Slow Burn":         domain.TagKindFreeform,
		"General Audiences": domain.TagKindRating,
	} {
		tag := domain.Tag{ID: id.MustGenerate(id.PrefixTag), Name: name, Kind: kind}
		if err := st.CreateTag(ctx, &tag); err != nil {
			return nil, fmt.Errorf("create tag %s: %w", name, err)
		}
		tags[name] = tag
	}

	works := []seedWork{
		{"The Road Out", 4200, false, []string{"alice", "bob"}, []string{"Hyrule", "Link", "General Audiences"}, 30 * 24 * time.Hour},
		{"Between Towns", 2600, true, []string{"alice"}, []string{"Hyrule", "Slow Burn"}, 14 * 24 * time.Hour},
		{"The Road Home", 5100, false, []string{"bob"}, []string{"Hyrule", "Link"}, 2 * 24 * time.Hour},
	}
	for _, sw := range works {
		w := &domain.Work{
			Syncable:    domain.Syncable{ID: id.MustGenerate(id.PrefixWork), CreatedAt: now, UpdatedAt: now},
			Title:       sw.title,
			Restricted:  sw.restricted,
			Posted:      true,
			WordCount:   sw.words,
			PublishedAt: now.Add(-sw.age),
			RevisedAt:   now.Add(-sw.age / 2),
		}
		for _, login := range sw.authors {
			w.Authors = append(w.Authors, pseuds[login])
		}
		for _, name := range sw.tags {
			w.Tags = append(w.Tags, tags[name])
		}
		if err := st.CreateWork(ctx, w); err != nil {
			return nil, fmt.Errorf("create work %q: %w", sw.title, err)
		}
		result.Works = append(result.Works, w.ID)
	}

	alice, err := svc.ResolveViewer(ctx, result.Users["alice"])
	if err != nil {
		return nil, err
	}
	byline := "Alice, Bob"
	created, err := svc.Create(ctx, alice, service.CreateSeriesInput{
		Title:   "The Long Road",
		Summary: "Three journeys across Hyrule.",
		Authors: domain.AuthorInput{Byline: &byline},
		WorkIDs: result.Works,
	})
	if err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	result.Series = created.Series.ID
	return result, nil
}
