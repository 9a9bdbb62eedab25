package cli

import (
	"io"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/seriesd/internal/service"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "show <series-id>",
		Short: "Print a series as a given viewer sees it",
		Long: `Print the summary of a series as seen by the user given with --as,
or by a guest when --as is omitted. Invisible series report not found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(func(i do.Injector) error {
				svc := do.MustInvoke[*service.SeriesService](i)
				ctx := cmd.Context()

				viewer, err := svc.ResolveViewer(ctx, as)
				if err != nil {
					return err
				}
				summary, err := svc.GetSummary(ctx, viewer, args[0])
				if err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(summary, func(w io.Writer) {
					printSummary(w, summary)
				})
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "user id to view as (default guest)")
	return cmd
}

func printSummary(w io.Writer, s *service.Summary) {
	printf(w, "%s  %s\n", s.ID, s.Title)
	names := make([]string, 0, len(s.Authors))
	for _, p := range s.Authors {
		names = append(names, p.Name)
	}
	printf(w, "  authors:    %s\n", strings.Join(names, ", "))
	printf(w, "  viewer:     %s\n", s.ViewerClass)
	printf(w, "  restricted: %t  hidden: %t\n", s.Restricted, s.HiddenByAdmin)
	printf(w, "  works:      %d (%d words)\n", s.WorkCount, s.WordCount)
	for _, e := range s.Works {
		printf(w, "    %d. %s  %s\n", e.Position, e.WorkID, e.Title)
	}
}
