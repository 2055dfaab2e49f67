package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rsvp-reader/internal/reader/playback"
	"rsvp-reader/internal/reader/textparse"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var wpm int

	cmd := &cobra.Command{
		Use:   "info [source]",
		Short: "Show word count, difficulty, and reading time for a source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.loadDocument(cmd, args)
			if err != nil {
				return err
			}
			if wpm == 0 {
				_, prefs, _ := ctx.loadPreferences()
				wpm = prefs.WPM
			}
			wpm = playback.ClampWPM(wpm)

			units := doc.Units()
			diff := textparse.AnalyzeDifficulty(doc.Text)

			playTime := playback.New(units, playback.Options{WPM: wpm}).State().TimeRemaining

			fields := [][2]string{
				{"Title", doc.Title},
				{"Source", string(doc.Kind)},
				{"Words", strconv.Itoa(textparse.WordCount(doc.Text))},
				{"Display units", strconv.Itoa(len(units))},
				{"Segments", strconv.Itoa(len(textparse.Parse(doc.Text)))},
				{"Difficulty", fmt.Sprintf("%s (%.1f)", diff.Level, diff.Score)},
				{"Suggested speed", fmt.Sprintf("%d wpm", diff.SuggestedWPM)},
				{"Reading time", fmt.Sprintf("%s at %d wpm", formatDuration(textparse.EstimateReadingTime(doc.Text, wpm)), wpm)},
				{"Playback time", formatDuration(playTime)},
			}
			if doc.Book != nil {
				md := doc.Book.Metadata
				fields = append(fields,
					[2]string{"Author", md.Author},
					[2]string{"Language", md.Language},
					[2]string{"Chapters", strconv.Itoa(len(doc.Book.Chapters))},
				)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, keyValueTable(fields))

			if doc.Book != nil {
				rows := make([][]string, len(doc.Book.Chapters))
				for i, ch := range doc.Book.Chapters {
					rows[i] = []string{strconv.Itoa(ch.Index + 1), ellipsize(ch.Title, 40), strconv.Itoa(textparse.WordCount(ch.Content))}
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Chapter", "Words"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&wpm, "wpm", "w", 0, "Speed used for time estimates (default from preferences)")

	return cmd
}
