package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/service"
)

var predictFlags struct {
	country     string
	countryCode int
	count       int
	minPrice    float64
	maxPrice    float64
	floor       float64
	jsonOutput  bool
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Print predictions for one country's live matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close()

		req := service.Request{
			Country:     predictFlags.country,
			CountryCode: predictFlags.countryCode,
			Count:       predictFlags.count,
		}
		flags := cmd.Flags()
		if flags.Changed("min-price") || flags.Changed("max-price") || flags.Changed("floor") {
			band := a.cfg.Band()
			if flags.Changed("min-price") {
				band.MinPrice = predictFlags.minPrice
			}
			if flags.Changed("max-price") {
				band.MaxPrice = predictFlags.maxPrice
			}
			if flags.Changed("floor") {
				band.ProbabilityFloor = predictFlags.floor
			}
			req.Band = &band
		}

		results, err := a.predictions.Predict(ctx, req)
		if err != nil {
			return err
		}

		if predictFlags.jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		return printPredictions(cmd.OutOrStdout(), results)
	},
}

func init() {
	f := predictCmd.Flags()
	f.StringVarP(&predictFlags.country, "country", "p", "", "Country name to filter matches on (required)")
	f.IntVar(&predictFlags.countryCode, "country-code", 0, "Feed country code (defaults to configuration)")
	f.IntVar(&predictFlags.count, "count", 0, "Number of matches requested from the feed")
	f.Float64Var(&predictFlags.minPrice, "min-price", 0, "Lowest accepted price for alternative markets")
	f.Float64Var(&predictFlags.maxPrice, "max-price", 0, "Highest accepted price for alternative markets")
	f.Float64Var(&predictFlags.floor, "floor", 0, "Minimum implied probability for alternative markets")
	f.BoolVar(&predictFlags.jsonOutput, "json", false, "Print the full prediction bundles as JSON")
	predictCmd.MarkFlagRequired("country")
}

func printPredictions(out io.Writer, results []service.MatchPrediction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATCH\tLEAGUE\tVERDICT\tPROBABILITY\tHALF TIME\tALTERNATIVE")
	for _, r := range results {
		fmt.Fprintf(w, "%s - %s\t%s\t%s\t%s\t%s\t%s\n",
			r.HomeTeam, r.AwayTeam, r.League, r.Verdict,
			fullTimeProbability(r.Bundle), halfTime(r.Bundle), alternative(r.Bundle))
	}
	return w.Flush()
}

func fullTimeProbability(b *models.PredictionBundle) string {
	if !b.HasFullTime() {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", b.FullTime.Winner.ImpliedProbability*100)
}

func halfTime(b *models.PredictionBundle) string {
	if b == nil || b.HalfTime == nil {
		return "-"
	}
	return b.HalfTime.Winner.Label
}

func alternative(b *models.PredictionBundle) string {
	if b == nil || b.AlternativeBest == nil {
		return "-"
	}
	w := b.AlternativeBest.Winner
	return fmt.Sprintf("%s @ %.2f", w.Label, w.Price)
}
