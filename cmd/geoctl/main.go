package main

// geoctl evaluates product content offline, without the API server or a
// database. Useful for trying out content changes before publishing:
//   go run ./cmd/geoctl questions
//   go run ./cmd/geoctl evaluate product.json

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"engineo-backend/internal/geo"
	"engineo-backend/internal/questions"
)

type productFile struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Audience    string           `json:"audience"`
	AnswerUnits []geo.AnswerUnit `json:"answerUnits"`
}

func main() {
	root := &cobra.Command{
		Use:          "geoctl",
		Short:        "Evaluate product content for generative engine readiness",
		SilenceUsage: true,
	}

	root.AddCommand(questionsCmd(), evaluateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func questionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the canonical buyer questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, q := range questions.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", q.ID, q.Label)
			}
			return nil
		},
	}
}

func evaluateCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "evaluate <product.json>",
		Short: "Evaluate a product definition file and print the readiness snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var product productFile
			if err := json.Unmarshal(raw, &product); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			for _, unit := range product.AnswerUnits {
				if !questions.IsCanonical(unit.QuestionID) {
					return fmt.Errorf("unit %q: unknown question id %q", unit.UnitID, unit.QuestionID)
				}
			}

			snapshot := geo.EvaluateProduct("local", product.AnswerUnits, geo.ProductMeta{
				Name:     product.Name,
				Category: product.Category,
				Audience: product.Audience,
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(snapshot)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent the JSON output")
	return cmd
}
