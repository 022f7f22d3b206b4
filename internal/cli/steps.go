package cli

import (
	"fmt"
	"io"
	"strings"

	"complykit/internal/questionnaire"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewStepsCommand creates the steps subcommand
func NewStepsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "Print the questionnaire steps and questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := opts.catalog()
			if err != nil {
				return err
			}
			printSteps(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}

func printSteps(w io.Writer, catalog *questionnaire.Catalog) {
	cyan := color.New(color.FgCyan, color.Bold)
	for i, step := range catalog.Steps() {
		cyan.Fprintf(w, "%d. %s\n", i+1, step.Title)
		fmt.Fprintf(w, "   %s\n", step.Description)
		for _, q := range step.Questions {
			marker := " "
			if q.Required {
				marker = "*"
			}
			fmt.Fprintf(w, "   %s %s [%s] %s\n", marker, q.ID, q.Type, q.Text)
			if q.DependsOn != nil {
				fmt.Fprintf(w, "       shown when %s = %q\n", q.DependsOn.QuestionID, q.DependsOn.Value)
			}
			if len(q.Options) > 0 {
				fmt.Fprintf(w, "       options: %s\n", strings.Join(q.Options, " | "))
			}
		}
		fmt.Fprintln(w)
	}
}
