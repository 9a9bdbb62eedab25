package cli

import (
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/seriesd/internal/service"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var workID string

	cmd := &cobra.Command{
		Use:   "reconcile [series-id...]",
		Short: "Recompute restricted flags",
		Long: `Recompute the restricted flag of the named series, of every series
holding --work, or of every series when neither is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(func(i do.Injector) error {
				svc := do.MustInvoke[*service.SeriesService](i)
				ctx := cmd.Context()

				var (
					report *service.ReconcileReport
					err    error
				)
				switch {
				case workID != "":
					report, err = svc.WorkChanged(ctx, workID)
				case len(args) > 0:
					report = &service.ReconcileReport{Changed: []string{}}
					for _, seriesID := range args {
						changed, rerr := svc.ReconcileRestricted(ctx, seriesID)
						if rerr != nil {
							return rerr
						}
						report.Checked++
						if changed {
							report.Changed = append(report.Changed, seriesID)
						}
					}
				default:
					report, err = svc.ReconcileAll(ctx)
				}
				if err != nil {
					return err
				}

				return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(report, func(w io.Writer) {
					printf(w, "checked %d series, %d changed\n", report.Checked, len(report.Changed))
					for _, id := range report.Changed {
						printf(w, "  %s\n", id)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&workID, "work", "", "reconcile only the series holding this work")
	return cmd
}
