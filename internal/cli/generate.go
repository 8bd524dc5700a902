package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cxxforge/internal/app"
)

func newGenerateCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Regenerate a project's build script without building",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, opts, argOrDot(args))
		},
	}

	cmd.Flags().StringVar(&opts.WorkspaceRoot, "workspace-root", "", "Sibling-project scan root (defaults to the project directory)")
	cmd.Flags().BoolVar(&opts.NoTests, "no-tests", false, "Skip test target generation")
	cmd.Flags().BoolVar(&opts.NoInstall, "no-install", false, "Skip library install and export rules")

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, opts buildOptions, dir string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Generate(ctx, app.GenerateRequest{
		Dir:           dir,
		WorkspaceRoot: resolveString(cmd, opts.WorkspaceRoot, "workspace_root", "workspace-root"),
		NoTests:       opts.NoTests,
		NoInstall:     opts.NoInstall,
	})
	if err != nil {
		return err
	}
	if result.Changed {
		fmt.Println("build script updated")
	} else {
		fmt.Println("build script unchanged")
	}
	return nil
}
