package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cxxforge/internal/app"
)

type buildOptions struct {
	Configuration string
	WorkspaceRoot string
	NoTests       bool
	NoInstall     bool
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build a project and its dependency graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, opts, argOrDot(args))
		},
	}

	cmd.Flags().StringVarP(&opts.Configuration, "configuration", "c", "", "Build configuration (Debug, Release, RelWithDebInfo, MinSizeRel)")
	cmd.Flags().StringVar(&opts.WorkspaceRoot, "workspace-root", "", "Sibling-project scan root (defaults to the project directory)")
	cmd.Flags().BoolVar(&opts.NoTests, "no-tests", false, "Skip test target generation")
	cmd.Flags().BoolVar(&opts.NoInstall, "no-install", false, "Skip library install and export rules")

	_ = viper.BindPFlag("configuration", cmd.Flags().Lookup("configuration"))
	_ = viper.BindPFlag("workspace_root", cmd.Flags().Lookup("workspace-root"))

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions, dir string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Build(ctx, app.BuildRequest{
		Dir:           dir,
		Configuration: resolveString(cmd, opts.Configuration, "configuration", "configuration"),
		WorkspaceRoot: resolveString(cmd, opts.WorkspaceRoot, "workspace_root", "workspace-root"),
		NoTests:       opts.NoTests,
		NoInstall:     opts.NoInstall,
	})
	if err != nil {
		return err
	}
	fmt.Printf("built: %s\n", strings.Join(result.Built, ", "))
	return nil
}

func argOrDot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
