// Command s3task runs declarative S3 transfer task files from build pipelines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildforge/s3task"
	"github.com/buildforge/s3task/profile"
	"github.com/buildforge/s3task/taskfile"
)

var (
	flagFile    string
	flagProfile string
	flagConfig  string
	flagQuiet   bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "s3task",
		Short:         "Run declarative S3 transfer tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the tasks in a task file, halting on the first failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd)
		},
	}
	cmd.Flags().StringVarP(&flagFile, "file", "f", "s3task.tasks.yaml", "task file to execute")
	cmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "connection profile name")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "config file with connection profiles")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress per-transfer log lines")
	return cmd
}

func runTasks(cmd *cobra.Command) error {
	f, err := taskfile.Load(flagFile)
	if err != nil {
		return err
	}

	profileName := flagProfile
	if profileName == "" {
		profileName = f.Profile
	}
	prof, err := profile.LoadFrom(flagConfig, profileName)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if !flagQuiet {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := prof.Options()
	opts = append(opts, s3task.WithLogger(logger.Sugar()))

	client, err := s3task.New(opts...)
	if err != nil {
		return err
	}

	return client.Run(cmd.Context(), f)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "s3task:", err)
		os.Exit(1)
	}
}
