package cli

import (
	"complykit/internal/model"
	"complykit/internal/risk"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type classifyOutput struct {
	RiskLevel model.RiskLevel `json:"riskLevel"`
	Rule      string          `json:"rule"`
	Score     int             `json:"score"`
}

// NewClassifyCommand creates the classify subcommand
func NewClassifyCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <answers.json>",
		Short: "Classify an answer set without running the questionnaire",
		Long: `Reads a JSON object mapping question ids to answers (a string, or a
list of strings for multi-select questions) and prints the risk level.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := readAnswers(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return classifyAnswers(cmd.OutOrStdout(), answers, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine readable output")
	return cmd
}

func readAnswers(path string, stdin io.Reader) (model.AnswerSet, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	var answers model.AnswerSet
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	return answers, nil
}

func classifyAnswers(w io.Writer, answers model.AnswerSet, asJSON bool) error {
	level, rule := risk.Explain(answers)
	score := risk.Score(answers)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(classifyOutput{RiskLevel: level, Rule: rule, Score: score})
	}
	printOutcome(w, level, rule, score)
	return nil
}
