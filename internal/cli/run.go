package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cxxforge/internal/app"
)

func newRunCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "run [dir] [-- args...]",
		Short: "Build an executable project, then run it",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			passthrough := args
			if len(args) > 0 && cmd.ArgsLenAtDash() != 0 {
				dir = args[0]
				passthrough = args[1:]
			}
			return runRun(cmd.Context(), cmd, opts, dir, passthrough)
		},
	}

	cmd.Flags().StringVarP(&opts.Configuration, "configuration", "c", "", "Build configuration (Debug, Release, RelWithDebInfo, MinSizeRel)")
	cmd.Flags().StringVar(&opts.WorkspaceRoot, "workspace-root", "", "Sibling-project scan root (defaults to the project directory)")
	cmd.Flags().BoolVar(&opts.NoTests, "no-tests", false, "Skip test target generation")

	_ = viper.BindPFlag("configuration", cmd.Flags().Lookup("configuration"))
	_ = viper.BindPFlag("workspace_root", cmd.Flags().Lookup("workspace-root"))

	return cmd
}

func runRun(ctx context.Context, cmd *cobra.Command, opts buildOptions, dir string, args []string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Run(ctx, app.RunRequest{
		BuildRequest: app.BuildRequest{
			Dir:           dir,
			Configuration: resolveString(cmd, opts.Configuration, "configuration", "configuration"),
			WorkspaceRoot: resolveString(cmd, opts.WorkspaceRoot, "workspace_root", "workspace-root"),
			NoTests:       opts.NoTests,
		},
		Args: args,
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
	return nil
}
