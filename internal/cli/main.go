package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "viralcut",
		Short:        "Detect viral moments in long-form media and render them as short clips",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("addr", ":8080", "HTTP listen address")
	root.Flags().String("workdir", ".viralcut", "Directory for sources, audio and rendered clips")

	// Hidden tuning flags (internal)
	root.Flags().Int("min", 15, "Min moment duration seconds")
	root.Flags().Int("max", 60, "Max moment duration seconds")
	_ = root.Flags().MarkHidden("min")
	_ = root.Flags().MarkHidden("max")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
