package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abunai/impact/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Model    string                     `json:"model,omitempty"`
	Elements int                        `json:"elements,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Validate an architecture model",
		Long: `Validate an architecture model without running an analysis.

Performs schema validation (ids, references, control flow) and reports
call and control-flow cycles as warnings. Cycles are legal; the sequence
finder cuts them at the first revisit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, modelPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	mf, err := compiler.Load(modelPath)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return outputValidationErrors(formatter, []compiler.ValidationError{{
				Field:   compileErr.Field,
				Message: compileErr.Message,
				Code:    ErrCodeModel,
				Line:    lineOf(compileErr),
			}})
		}
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to load model", err)
	}
	formatter.Logf("Loaded model %s from %s", mf.Name, modelPath)

	st, errs := compiler.Compile(mf)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	warnings := compiler.AnalyzeCycles(st)
	result := ValidationResult{
		Valid:    true,
		Model:    st.Name(),
		Elements: st.Len(),
		Warnings: warnings,
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Model %s valid (%d elements)\n", result.Model, result.Elements)
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", w.Level, w.Message)
	}
	return nil
}

func lineOf(err *compiler.CompileError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidationErrors outputs validation errors and returns ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	printValidationErrors(formatter, errs)

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func printValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) {
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
}
