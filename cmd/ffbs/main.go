package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(NewCmd().ExecuteContext(context.Background()))
}

// NewCmd creates ffbs root command
func NewCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "ffbs [command] [flags]",
		Short:         "ffbs draws latent paths of dynamic linear models",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline phases")

	simulateCmd := &cobra.Command{
		Use:   "simulate [flags]",
		Short: "Simulate a dynamic linear model",
		RunE:  doSimulate,
	}
	simulateCmd.Flags().StringP("config", "c", "", "`<Config>` simulation config file; empty means defaults")
	simulateCmd.Flags().StringP("output", "o", "model.yaml", "`<Output>` model file")
	simulateCmd.Flags().Uint64("seed", 0, "`<Seed>` overriding the config seed")

	sampleCmd := &cobra.Command{
		Use:   "sample [flags]",
		Short: "Draw latent paths from the posterior of a model",
		RunE:  doSample,
	}
	sampleCmd.Flags().StringP("model", "m", "model.yaml", "`<Model>` model file")
	sampleCmd.Flags().IntP("draws", "n", 100, "`<Draws>` number of latent paths to draw")
	sampleCmd.Flags().Uint64("seed", 0, "`<Seed>` of the sampler; 0 seeds from time")
	sampleCmd.Flags().StringP("output", "o", "", "`<Output>` CSV file to write draws to")
	sampleCmd.Flags().String("plot", "", "`<Plot>` PNG file to plot the first dynamic coordinate to")
	sampleCmd.Flags().Int("every", 1, "`<Every>` print every n-th time step")

	rootCmd.AddCommand(
		simulateCmd,
		sampleCmd,
	)
	return rootCmd
}

func logger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
