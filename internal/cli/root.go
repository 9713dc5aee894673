package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	parleylog "github.com/parley-cli/parley/internal/log"
)

const version = "0.3.0"

const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Local-first CLI for conversing with LLM agents",
	Long: "Parley talks to LLM providers through named agents, with a semantic\n" +
		"response cache in front so repeated and rephrased prompts come back\n" +
		"instantly and for free.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		parleylog.Init()
	},
}

// Shared flags, bound per command in init funcs.
var (
	flagProvider    string
	flagModel       string
	flagFormat      string
	flagOut         string
	flagAgent       string
	flagTemplate    string
	flagVars        []string
	flagNoCache     bool
	flagNoRedact    bool
	flagMaxTokens   int
	flagTemperature float64
	flagAddr        string
)

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print parley version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "parley version %s\n", version)
	},
}

// buildOverrides maps set flags to config override keys. Zero values are
// omitted so they do not clobber file or env settings.
func buildOverrides() map[string]string {
	m := map[string]string{}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = strconv.Itoa(flagMaxTokens)
	}
	if flagTemperature > 0 {
		m["temperature"] = strconv.FormatFloat(flagTemperature, 'f', -1, 64)
	}
	if flagAddr != "" {
		m["dashboardAddr"] = flagAddr
	}
	return m
}

// parseVars turns repeated --var key=value flags into a map.
func parseVars(pairs []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
