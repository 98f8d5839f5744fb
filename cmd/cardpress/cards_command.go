package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cardpress/internal/config"
	"cardpress/internal/logging"
	"cardpress/internal/manifest"
	"cardpress/internal/naming"
)

func newCardsCommand(cmdCtx *commandContext) *cobra.Command {
	var names bool

	cmd := &cobra.Command{
		Use:         "cards <manifest>",
		Short:       "List the cards in a saved-card manifest",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			man, err := manifest.Load(path, logging.NewNop())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !names {
				for _, key := range man.Keys() {
					fmt.Fprintln(out, key)
				}
				return nil
			}

			rows := make([][]string, 0, len(man.Records))
			for _, rec := range man.Records {
				meta := rec.Metadata()
				rows = append(rows, []string{
					rec.Key,
					meta.Title,
					meta.Set,
					meta.Number,
					naming.ArtifactName(rec.Key, meta),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Card", "Title", "Set", "Number", "Artifact"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&names, "names", false, "Show resolved artifact names and metadata")
	return cmd
}
