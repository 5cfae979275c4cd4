package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Maanisha27/MediTriage/internal/evaluation"
	"github.com/Maanisha27/MediTriage/internal/ingestion"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/triage"
)

func newTriageCommand(root *rootOptions) *cobra.Command {
	var (
		input       string
		maxPatients int
	)

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Rank a batch of patients by clinical priority",
		Long: "Rank patients read from a JSON array (--input, \"-\" for stdin). Without\n" +
			"--input the sample patients of the dataset are ranked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := loadPatients(cmd, root, input)
			if err != nil {
				return err
			}
			for _, p := range patients {
				if err := ingestion.Validate(p); err != nil {
					return err
				}
			}

			evaluator := evaluation.NewEvaluator(nil)
			report, err := triage.NewEngine(evaluator, nil, maxPatients).Run(patients)
			if err != nil {
				return err
			}

			if root.output == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return printTriage(cmd, evaluator, report)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON file with an array of patients")
	cmd.Flags().IntVar(&maxPatients, "max-patients", 500, "largest batch accepted, 0 for no limit")

	return cmd
}

func loadPatients(cmd *cobra.Command, root *rootOptions, input string) ([]models.Patient, error) {
	if input == "" {
		bundle, err := root.bundle()
		if err != nil {
			return nil, err
		}
		return bundle.Patients, nil
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return nil, err
	}
	var patients []models.Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, fmt.Errorf("failed to parse patients: %w", err)
	}
	return patients, nil
}

func printTriage(cmd *cobra.Command, evaluator *evaluation.Evaluator, report *triage.Report) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPATIENT\tCONDITION\tTOPSIS\tPROMETHEE\tPRIORITY\tFUZZY")
	for _, r := range report.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%.4f\t%s\t%s\n",
			r.Rank, r.Patient.ID, r.Patient.ConditionDesc, r.TOPSIS, r.PROMETHEE, r.Priority, r.FuzzyLabel)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nweights: %.3f (dynamic: %t)\n", report.Weights, report.DynamicWeights)
	if report.Agreement != nil {
		fmt.Fprint(cmd.OutOrStdout(), evaluator.GenerateReport(report.Agreement))
	}
	return nil
}
