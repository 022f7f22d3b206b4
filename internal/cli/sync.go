package cli

import (
	"complykit/internal/localstore"
	"complykit/internal/model"
	"complykit/internal/risk"
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// localStore is the part of localstore.Store the commands use
type localStore interface {
	Add(result *model.QuestionnaireResult) (string, error)
	List() ([]localstore.Entry, error)
	Remove(ids ...string) error
	ClientID() (string, error)
}

// submitter uploads one answer set
type submitter interface {
	submit(ctx context.Context, submissionID string, answers model.AnswerSet) (*submitResponse, error)
}

// NewSyncCommand creates the sync subcommand
func NewSyncCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload locally queued results to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return errNoToken
			}
			store, err := opts.store()
			if err != nil {
				return err
			}
			clientID, err := store.ClientID()
			if err != nil {
				return err
			}
			return syncPending(cmd.Context(), cmd.OutOrStdout(), store, newAPIClient(opts.server, opts.token, clientID))
		},
	}
}

// syncPending uploads every queued entry. Entries the server accepted are
// removed, including ones it queued itself; only entries that never reached
// the server stay for the next run.
func syncPending(ctx context.Context, out io.Writer, store localStore, api submitter) error {
	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Nothing to sync.")
		return nil
	}

	var (
		done   []string
		failed int
	)
	for _, e := range entries {
		resp, err := api.submit(ctx, e.ID, e.Result.Answers)
		if err != nil {
			failed++
			color.New(color.FgYellow).Fprintf(out, "  %s: %v\n", e.ID, err)
			continue
		}
		done = append(done, e.ID)
		if !resp.Persisted {
			fmt.Fprintf(out, "  %s: accepted, the server stores it once its database is back\n", e.ID)
			continue
		}
		fmt.Fprintf(out, "  %s: uploaded as %s (%s)\n", e.ID, resp.Result.ID, resp.RiskLevel)
	}

	if len(done) > 0 {
		if err := store.Remove(done...); err != nil {
			return fmt.Errorf("failed to clear uploaded entries: %w", err)
		}
	}

	fmt.Fprintf(out, "Synced %d of %d result(s).\n", len(done), len(entries))
	if failed > 0 {
		return fmt.Errorf("%d result(s) could not be uploaded", failed)
	}
	return nil
}

// NewPendingCommand creates the pending subcommand
func NewPendingCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List results waiting to be synced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			return listPending(cmd.OutOrStdout(), store)
		},
	}
}

func listPending(out io.Writer, store localStore) error {
	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No pending results.")
		return nil
	}

	for _, e := range entries {
		company := e.Result.Answers.Scalar(risk.FieldCompanyName)
		if company == "" {
			company = "(unnamed)"
		}
		levelColor(e.Result.RiskLevel).Fprintf(out, "%-18s", e.Result.RiskLevel)
		fmt.Fprintf(out, " %s  queued %s  [%s]\n", company, humanize.Time(e.QueuedAt), e.ID)
	}
	fmt.Fprintf(out, "%s pending\n", humanize.Comma(int64(len(entries))))
	return nil
}
