package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rsvp-reader/internal/reader/textparse"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON bool
		units  bool
	)

	cmd := &cobra.Command{
		Use:   "parse [source]",
		Short: "Show how a source is split into structural segments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.loadDocument(cmd, args)
			if err != nil {
				return err
			}

			var (
				items any
				rows  [][]string
			)
			if units {
				list := doc.Units()
				items = list
				for i, u := range list {
					rows = append(rows, []string{strconv.Itoa(i), string(u.Type), ellipsize(u.SectionTitle, 24), u.Text})
				}
			} else {
				list := textparse.Parse(doc.Text)
				if len(list) == 0 {
					list = []textparse.Segment{{Text: doc.Text, Type: textparse.Normal}}
				}
				items = list
				for i, s := range list {
					rows = append(rows, []string{strconv.Itoa(i), string(s.Type), ellipsize(s.SectionTitle, 24), ellipsize(s.Text, 60)})
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Section", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&units, "units", false, "List display units (one per word) instead of segments")

	return cmd
}
