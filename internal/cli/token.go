package cli

import (
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/seriesd/internal/auth"
	"github.com/listenupapp/seriesd/internal/di/providers"
)

// TokenResult is the output of the token command.
type TokenResult struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(func(i do.Injector) error {
				storeHandle := do.MustInvoke[*providers.StoreHandle](i)
				tokens := do.MustInvoke[*auth.TokenService](i)

				user, err := storeHandle.GetUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				token, err := tokens.Issue(user)
				if err != nil {
					return err
				}

				result := TokenResult{UserID: user.ID, Token: token, ExpiresIn: tokens.Duration().String()}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(result, func(w io.Writer) {
					printf(w, "%s\n", token)
				})
			})
		},
	}
}
