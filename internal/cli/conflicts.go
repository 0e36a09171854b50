package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/planner"
)

// errConflictsFound makes --strict exit non-zero.
var errConflictsFound = errors.New("time conflicts found")

// TermConflicts is one term's conflict report.
type TermConflicts struct {
	Term      string   `json:"term"`
	Conflicts []string `json:"conflicts"`
}

func newConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conflicts",
		Short:   "Check a saved plan for overlapping meeting times",
		Example: "  planner-cli conflicts --plan plan.json --strict",
		RunE:    runConflicts,
	}
	cmd.Flags().StringP("plan", "p", "", "Plan JSON written by the plan command or the API (required)")
	cmd.Flags().Bool("strict", false, "Exit with an error when any conflict is found")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func runConflicts(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("plan")
	strict, _ := cmd.Flags().GetBool("strict")

	plan, err := LoadPlanFile(path)
	if err != nil {
		return err
	}

	report := make([]TermConflicts, 0, len(plan.Terms))
	total := 0
	for _, t := range plan.Terms {
		conflicts := planner.DetectConflicts(t.Courses)
		total += len(conflicts)
		label := t.Label
		if label == "" {
			label = t.Term.Label()
		}
		report = append(report, TermConflicts{Term: label, Conflicts: conflicts})
	}

	if format == "json" {
		enc := json.NewEncoder(out(cmd))
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, r := range report {
			if len(r.Conflicts) == 0 {
				fmt.Fprintf(out(cmd), "%s: no conflicts\n", r.Term)
				continue
			}
			fmt.Fprintf(out(cmd), "%s:\n", r.Term)
			for _, c := range r.Conflicts {
				fmt.Fprintf(out(cmd), "  %s\n", c)
			}
		}
	}

	if strict && total > 0 {
		return fmt.Errorf("%w: %d", errConflictsFound, total)
	}
	return nil
}

// LoadPlanFile reads a plan JSON file. It accepts the plan command's output, the API's
// data envelope payload or a bare plan.
func LoadPlanFile(path string) (models.MultiTermPlan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.MultiTermPlan{}, fmt.Errorf("read plan file: %w", err)
	}
	var wrapped struct {
		Plan *models.MultiTermPlan `json:"plan"`
		Data *struct {
			Plan *models.MultiTermPlan `json:"plan"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return models.MultiTermPlan{}, fmt.Errorf("parse plan file: %w", err)
	}
	switch {
	case wrapped.Plan != nil:
		return *wrapped.Plan, nil
	case wrapped.Data != nil && wrapped.Data.Plan != nil:
		return *wrapped.Data.Plan, nil
	}
	var plan models.MultiTermPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return models.MultiTermPlan{}, fmt.Errorf("parse plan file: %w", err)
	}
	return plan, nil
}
