package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/symptom"
)

func newRouteCommand(root *rootOptions) *cobra.Command {
	var (
		req       routing.Request
		vector    string
		condition string
		pain      float64
		age       int
		limit     int
		lambda    float64
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Recommend specialists for one patient",
		Long: "Rank the specialist pool for a patient. Give the symptom vector directly\n" +
			"with --vector, or let it be projected from --condition, --pain and --age.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case vector != "":
				v, err := parseVector(vector)
				if err != nil {
					return err
				}
				req.SymptomVector = v
			case condition != "":
				req.SymptomVector = symptom.Project(condition, req.Severity, req.Urgency, pain, age)
			default:
				return fmt.Errorf("either --vector or --condition is required")
			}

			bundle, err := root.bundle()
			if err != nil {
				return err
			}

			opts := routing.DefaultOptions()
			opts.MaxRecommendations = limit
			if cmd.Flags().Changed("lambda") {
				opts.Lambda = lambda
			}

			res, err := routing.NewEngine(bundle.Routing, opts).Route(context.Background(), req)
			if err != nil {
				return err
			}

			if root.output == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printRoute(cmd, res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.PatientID, "patient-id", "", "patient id (generated when empty)")
	f.Float64Var(&req.Severity, "severity", 50, "severity on the 0-100 scale")
	f.Float64Var(&req.Urgency, "urgency", 50, "urgency on the 0-100 scale")
	f.StringVar(&vector, "vector", "", fmt.Sprintf("comma-separated symptom vector of %d values", symptom.Dimensions))
	f.StringVar(&condition, "condition", "", "condition description to project into a symptom vector")
	f.Float64Var(&pain, "pain", 0, "pain level 0-10, used with --condition")
	f.IntVar(&age, "age", 0, "patient age, used with --condition")
	f.IntVar(&limit, "max", 0, "number of recommendations to print, 0 for all")
	f.Float64Var(&lambda, "lambda", 0.5, "WASPAS blend between weighted sum and weighted product")

	return cmd
}

func parseVector(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != symptom.Dimensions {
		return nil, fmt.Errorf("symptom vector needs %d values, got %d", symptom.Dimensions, len(parts))
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func printRoute(cmd *cobra.Command, res *routing.Result) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "patient: %s\n\n", res.PatientID)
	if len(res.Recommendations) == 0 {
		fmt.Fprintln(out, "no specialist available")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSPECIALIST\tSPECIALTY\tCONFIDENCE\tWAIT (MIN)")
	for _, r := range res.Recommendations {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%d\n", r.Rank, r.SpecialistID, r.Specialty, r.Confidence, r.EstimatedWaitMin)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(res.MissingProfiles) > 0 {
		fmt.Fprintf(out, "\nno symptom profile: %s\n", strings.Join(res.MissingProfiles, ", "))
	}
	return nil
}
