package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/course-planner-api/internal/catalogio"
	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/planner"
)

const (
	defaultTerms    = 12
	defaultMaxUnits = 20
)

// StudentFile is the YAML document read by the plan command.
type StudentFile struct {
	StudentID             string `yaml:"studentId"`
	dto.StudentStateInput `yaml:",inline"`
	Constraints           models.ScheduleConstraints `yaml:"constraints"`
	Requirement           *models.DegreeRequirement  `yaml:"requirement,omitempty"`
}

// PlanOutput is the JSON document written by the plan command.
type PlanOutput struct {
	StudentID string               `json:"studentId,omitempty"`
	Plan      models.MultiTermPlan `json:"plan"`
	Dropped   map[string][]string  `json:"dropped,omitempty"`
	Rejected  []string             `json:"rejectedRows,omitempty"`
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a multi-term plan",
		Example: "  planner-cli plan --catalog courses.csv --student student.yaml --terms 6\n" +
			"  planner-cli plan -c courses.csv -s student.yaml -f json > plan.json",
		RunE: runPlan,
	}
	cmd.Flags().StringP("catalog", "c", "", "Catalog CSV file (required)")
	cmd.Flags().StringP("student", "s", "", "Student YAML file (required)")
	cmd.Flags().IntP("terms", "t", defaultTerms, "Maximum number of terms to plan")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	catalogPath, _ := cmd.Flags().GetString("catalog")
	studentPath, _ := cmd.Flags().GetString("student")
	terms, _ := cmd.Flags().GetInt("terms")
	if terms < 1 {
		return fmt.Errorf("--terms must be at least 1")
	}

	courses, rejected, err := catalogio.LoadFile(catalogPath)
	if err != nil {
		return err
	}
	student, err := LoadStudentFile(studentPath)
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	defer logger.Sync() //nolint:errcheck

	engine := planner.NewEngine(planner.CheckerFor(student.Requirement), logger)
	plan := engine.GenerateMultiTermPlan(student.ToState(student.StudentID), courses, student.Constraints, terms)

	result := PlanOutput{StudentID: student.StudentID, Plan: plan, Dropped: map[string][]string{}}
	for _, t := range plan.Terms {
		if len(t.Dropped) > 0 {
			result.Dropped[t.Label] = t.Dropped
		}
	}
	for _, r := range rejected {
		result.Rejected = append(result.Rejected, r.Error())
	}

	if format == "json" {
		enc := json.NewEncoder(out(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writePlanText(out(cmd), result)
}

// LoadStudentFile reads and validates a student YAML file, filling unit defaults.
func LoadStudentFile(path string) (*StudentFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read student file: %w", err)
	}
	var student StudentFile
	if err := yaml.Unmarshal(raw, &student); err != nil {
		return nil, fmt.Errorf("parse student file: %w", err)
	}
	for i, id := range student.Completed {
		student.Completed[i] = catalogio.NormalizeID(id)
	}
	if student.Constraints.MaxUnits == 0 {
		student.Constraints.MaxUnits = defaultMaxUnits
	}
	if student.Requirement != nil && student.Requirement.Major == "" {
		student.Requirement.Major = student.Major
	}

	validate := validator.New()
	if err := validate.Struct(student.StudentStateInput); err != nil {
		return nil, fmt.Errorf("invalid student file: %w", err)
	}
	if err := validate.Struct(student.Constraints); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}
	c := student.Constraints
	if c.MinUnits > c.MaxUnits {
		return nil, fmt.Errorf("invalid constraints: minUnits %d exceeds maxUnits %d", c.MinUnits, c.MaxUnits)
	}
	if c.OptimalUnits > 0 && (c.OptimalUnits < c.MinUnits || c.OptimalUnits > c.MaxUnits) {
		return nil, fmt.Errorf("invalid constraints: optimalUnits %d outside [%d, %d]", c.OptimalUnits, c.MinUnits, c.MaxUnits)
	}
	return &student, nil
}

func writePlanText(w io.Writer, result PlanOutput) error {
	var b strings.Builder
	for _, t := range result.Plan.Terms {
		fmt.Fprintf(&b, "%s  (%d units, est. GPA %.2f, workload %.2f)\n", t.Label, t.TotalUnits, t.EstimatedGPA, t.WorkloadScore)
		if len(t.Courses) == 0 {
			b.WriteString("  no eligible courses\n")
		}
		for _, c := range t.Courses {
			fmt.Fprintf(&b, "  %-10s %-36s %du  %-3s %s-%s  %s\n",
				c.ID, truncate(c.Name, 36), c.Units, models.DayPattern(c.Days), c.StartTime, c.EndTime, c.Location)
		}
		for _, conflict := range t.Conflicts {
			fmt.Fprintf(&b, "  conflict: %s\n", conflict)
		}
		if dropped := result.Dropped[t.Label]; len(dropped) > 0 {
			fmt.Fprintf(&b, "  no time slot: %s\n", strings.Join(dropped, ", "))
		}
	}
	fmt.Fprintf(&b, "\nTotal units: %d\nOverall GPA: %.2f\nCompletion: %.0f%%\nGraduation term: %s\nStopped: %s\n",
		result.Plan.TotalUnits, result.Plan.OverallGPA, result.Plan.CompletionRate*100, result.Plan.GraduationLabel, result.Plan.Termination)
	if len(result.Rejected) > 0 {
		fmt.Fprintf(&b, "\nRejected catalog rows:\n")
		for _, r := range result.Rejected {
			fmt.Fprintf(&b, "  %s\n", r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
