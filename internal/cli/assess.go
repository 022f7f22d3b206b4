package cli

import (
	"bufio"
	"complykit/internal/model"
	"complykit/internal/questionnaire"
	"complykit/internal/risk"
	"complykit/internal/service"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// backCommand typed at any prompt returns to the previous step
const backCommand = ":back"

var errInputEnded = errors.New("input ended before the questionnaire was completed")

// NewAssessCommand creates the assess subcommand
func NewAssessCommand(opts *globalOptions) *cobra.Command {
	var (
		noSummary bool
		noSync    bool
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run the questionnaire interactively",
		Long: `Asks every question step by step. Type ":back" to return to the
previous step, or press Enter to keep the answer shown in brackets.

The result is stored locally and, when a token is available, sent to the
server. Results that cannot be sent stay queued for "complykit sync".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := opts.catalog()
			if err != nil {
				return err
			}
			log := opts.logger()
			defer log.Sync()

			out := cmd.OutOrStdout()
			m := questionnaire.NewMachine(catalog)
			if err := runQuestionnaire(cmd.InOrStdin(), out, m); err != nil {
				return err
			}

			answers := m.Answers()
			level := m.RiskLevel()
			_, rule := risk.Explain(answers)
			printOutcome(out, level, rule, risk.Score(answers))

			if !noSummary {
				ai := opts.aiConfig()
				if ai.IsEnabled() {
					printSummary(cmd.Context(), out, service.NewGeminiClient(ai, log), answers, level)
				}
			}

			store, err := opts.store()
			if err != nil {
				return err
			}
			return saveAndSync(cmd.Context(), out, store, opts, answers, level, !noSync, log)
		},
	}

	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "skip the generated narrative summary")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "only store the result locally")
	return cmd
}

// runQuestionnaire drives m to completion from line based input
func runQuestionnaire(in io.Reader, out io.Writer, m *questionnaire.Machine) error {
	scanner := bufio.NewScanner(in)
	header := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)

	for !m.Completed() {
		step := m.CurrentStep()
		header.Fprintf(out, "\n[%d%%] %s\n", m.Progress(), step.Title)
		fmt.Fprintf(out, "%s\n", step.Description)

		back := false
		// Visibility is re-checked per question because an earlier answer in
		// the same step can reveal a later one.
		for _, q := range step.Questions {
			if !questionnaire.Visible(q, m.Answers()) {
				continue
			}
			current, _ := m.Answers().Get(q.ID)
			value, isBack, err := ask(scanner, out, q, current)
			if err != nil {
				return err
			}
			if isBack {
				back = true
				break
			}
			if value.Defined() {
				m.SetAnswer(q.ID, value)
			}
		}

		if back {
			if m.IsFirstStep() {
				warn.Fprintln(out, "Already at the first step.")
			}
			if _, err := m.Retreat(); err != nil {
				return err
			}
			continue
		}

		if _, err := m.Advance(); err != nil {
			var verr *questionnaire.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			warn.Fprintf(out, "Please answer: %s\n", strings.Join(verr.Missing, ", "))
		}
	}
	return nil
}

// ask prompts for one question until the input is acceptable. An empty line
// keeps current.
func ask(scanner *bufio.Scanner, out io.Writer, q model.Question, current model.AnswerValue) (model.AnswerValue, bool, error) {
	bold := color.New(color.Bold)
	for {
		marker := ""
		if q.Required {
			marker = " *"
		}
		bold.Fprintf(out, "\n%s%s\n", q.Text, marker)
		if q.HelperText != "" {
			fmt.Fprintf(out, "  %s\n", q.HelperText)
		}
		for i, o := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, o)
		}
		if q.Type.IsMultiSelect() {
			fmt.Fprintln(out, "  (comma separated numbers)")
		}
		if current.Defined() {
			fmt.Fprintf(out, "[%s] ", current.String())
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return model.AnswerValue{}, false, err
			}
			return model.AnswerValue{}, false, errInputEnded
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == backCommand:
			return model.AnswerValue{}, true, nil
		case line == "":
			return current, false, nil
		}

		value, err := parseAnswer(q, line)
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "  %v\n", err)
			continue
		}
		return value, false, nil
	}
}

// parseAnswer converts one input line into an answer for q. Options can be
// given by number or by their exact text.
func parseAnswer(q model.Question, line string) (model.AnswerValue, error) {
	if !q.Type.HasOptions() {
		return model.Scalar(line), nil
	}

	if !q.Type.IsMultiSelect() {
		opt, err := pickOption(q.Options, line)
		if err != nil {
			return model.AnswerValue{}, err
		}
		return model.Scalar(opt), nil
	}

	var picked []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		opt, err := pickOption(q.Options, part)
		if err != nil {
			return model.AnswerValue{}, err
		}
		if !seen[opt] {
			seen[opt] = true
			picked = append(picked, opt)
		}
	}
	return model.List(picked...), nil
}

func pickOption(options []string, input string) (string, error) {
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("choose a number between 1 and %d", len(options))
		}
		return options[n-1], nil
	}
	for _, o := range options {
		if strings.EqualFold(o, input) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%q is not one of the options", input)
}

// printSummary requests the narrative summary. Failure prints the fixed
// fallback and never hides the risk level already shown.
func printSummary(ctx context.Context, out io.Writer, gen service.Generator, answers model.AnswerSet, level model.RiskLevel) {
	fmt.Fprintln(out, "\nGenerating your compliance summary...")
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	text, err := gen.Generate(ctx, service.PurposeSummary, service.SummaryPrompt(answers, level))
	if err != nil || strings.TrimSpace(text) == "" {
		color.New(color.FgYellow).Fprintln(out, service.SummaryFallback)
		return
	}
	fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(text))
}

// saveAndSync queues the result locally, then tries to send it
func saveAndSync(ctx context.Context, out io.Writer, store localStore, opts *globalOptions, answers model.AnswerSet, level model.RiskLevel, doSync bool, log *zap.Logger) error {
	result := &model.QuestionnaireResult{
		Timestamp: time.Now().UTC(),
		Answers:   answers,
		Score:     risk.Score(answers),
		RiskLevel: level,
	}
	entryID, err := store.Add(result)
	if err != nil {
		return fmt.Errorf("failed to store result locally: %w", err)
	}

	if !doSync || opts.token == "" {
		fmt.Fprintln(out, "\nResult saved locally. Run \"complykit sync\" with a token to upload it.")
		return nil
	}

	clientID, err := store.ClientID()
	if err != nil {
		log.Warn("no client id", zap.Error(err))
	}
	return uploadEntry(ctx, out, store, newAPIClient(opts.server, opts.token, clientID), entryID, answers, log)
}

// uploadEntry sends one queued entry. Once the server accepts it the local
// copy is removed, even when the server only queued it.
func uploadEntry(ctx context.Context, out io.Writer, store localStore, api submitter, entryID string, answers model.AnswerSet, log *zap.Logger) error {
	resp, err := api.submit(ctx, entryID, answers)
	if err != nil {
		log.Warn("upload failed, result kept locally", zap.Error(err))
		color.New(color.FgYellow).Fprintf(out, "\nCould not reach the server (%v). The result stays queued locally.\n", err)
		return nil
	}
	if err := store.Remove(entryID); err != nil {
		return fmt.Errorf("uploaded but failed to clear local entry: %w", err)
	}
	if !resp.Persisted {
		fmt.Fprintln(out, "\nResult accepted. The server stores it once its database is back.")
		return nil
	}
	color.New(color.FgGreen).Fprintf(out, "\nResult uploaded (id %s).\n", resp.Result.ID)
	return nil
}
