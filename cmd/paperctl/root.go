package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/apiClient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	v       *viper.Viper
	wait    bool
	timeout time.Duration
}

func (o *options) client() *apiClient.Client {
	return apiClient.New(o.v.GetString("server"), o.v.GetString("token"))
}

func (o *options) user() (string, error) {
	user := o.v.GetString("user")
	if strings.TrimSpace(user) == "" {
		return "", errors.New("--user (or PAPERCTL_USER) is required")
	}
	return user, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:           "paperctl",
		Short:         "Ingest, query and summarize scientific articles through a PaperRAG server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:3000", "PaperRAG server address")
	flags.String("token", "", "bearer token")
	flags.String("user", "", "user id the article is bound to")
	flags.BoolVar(&opts.wait, "wait", false, "poll until the task finishes")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "how long --wait polls before giving up")

	opts.v.SetEnvPrefix("PAPERCTL")
	opts.v.AutomaticEnv()
	for _, name := range []string{"server", "token", "user"} {
		_ = opts.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(newIngestCmd(opts), newAskCmd(opts), newSummarizeCmd(opts), newStatusCmd(opts))
	return root
}

func newIngestCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ingest [arxiv link or url]",
		Short: "Ingest an article and bind it to the user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.user()
			if err != nil {
				return err
			}
			var sub api.SubmitResponse
			switch {
			case file != "" && len(args) == 0:
				sub, err = opts.client().Upload(cmd.Context(), user, file)
			case file == "" && len(args) == 1:
				sub, err = opts.client().Ingest(cmd.Context(), user, args[0])
			default:
				return errors.New("give either a link or --file")
			}
			if err != nil {
				return err
			}
			return opts.finish(cmd, sub)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "local PDF, DOCX, TXT or Markdown file to upload")
	return cmd
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the user's article",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.user()
			if err != nil {
				return err
			}
			sub, err := opts.client().Ask(cmd.Context(), user, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return opts.finish(cmd, sub)
		},
	}
}

func newSummarizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Summarize the user's article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.user()
			if err != nil {
				return err
			}
			sub, err := opts.client().Summarize(cmd.Context(), user)
			if err != nil {
				return err
			}
			return opts.finish(cmd, sub)
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status [task id]",
		Short: "Show the state of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, args[0])
		},
	}
}

// finish prints the submission, or the final task state with --wait.
func (o *options) finish(cmd *cobra.Command, sub api.SubmitResponse) error {
	if !o.wait {
		return printJSON(cmd, sub)
	}
	return o.report(cmd, sub.TaskId)
}

func (o *options) report(cmd *cobra.Command, taskId string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		res api.TaskStatusResponse
		err error
	)
	if o.wait {
		waitCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		res, err = o.client().Wait(waitCtx, taskId)
	} else {
		res, err = o.client().Status(ctx, taskId)
	}
	if err != nil {
		return err
	}
	if err := printJSON(cmd, res); err != nil {
		return err
	}
	if res.Status == "failed" {
		return fmt.Errorf("task %s failed: %s", taskId, res.Error)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
