// cmd/ossbench/compare.go
package ossbench

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ossbench/internal/config"
	"ossbench/internal/dashboard"
	"ossbench/internal/ingest"
	"ossbench/internal/judge"
	"ossbench/internal/providers"
)

var startDashboard = dashboard.Start

// Declare a variable to store the config file path.
// This is not strictly necessary if you only access via viper,
// but it's common practice with StringVar.
var cfgFile string

var (
	compareRepo      string
	compareReference string
)

// compareCmd represents the 'compare' command.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Start the side-by-side inference comparison dashboard",
	Long:  `The 'compare' command ingests a repository and starts an interactive dashboard that streams the same prompt to every configured provider side by side, with optional LLM-judge scoring.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if cfg.Debug {
			pp.Println(cfg)
		}

		logger, err := newLogger(cfg.Debug)
		if err != nil {
			return err
		}
		defer logger.Sync()

		judgeClient := providers.New(cfg.Judge, providers.WithLogger(logger))
		j := judge.New(judgeClient, judge.WithLogger(logger))
		ing := ingest.New(ingest.WithLogger(logger))

		reference := ""
		if compareReference != "" {
			data, err := os.ReadFile(compareReference)
			if err != nil {
				return fmt.Errorf("reading reference solution: %w", err)
			}
			reference = string(data)
		}

		return startDashboard(cfg, j, ing, compareRepo, reference)
	},
}

// newLogger builds the process logger. Debug mode switches to the
// human-readable development encoder.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	// 1. Add the command to the root
	rootCmd.AddCommand(compareCmd)

	// 2. Define the string flag 'config'
	// StringVarP: Target variable, Flag name, Shorthand (e.g., "c"), Default value, Description
	compareCmd.Flags().StringVarP(&cfgFile, "config", "c", "config.json", "config file (e.g., config.local.json)")
	compareCmd.Flags().StringVarP(&compareRepo, "repo", "r", ".", "path to the repository to ingest as context")
	compareCmd.Flags().StringVar(&compareReference, "reference", "", "path to a reference solution used by the judge")

	// 3. Bind the Cobra flag to Viper
	// The key in viper will be "config"
	viper.BindPFlag("config", compareCmd.Flags().Lookup("config"))
}
