package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-cli/parley/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the response cache of a running parley serve",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		body, err := dashboardGet(cfg, "/api/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\nIs `parley serve` running on %s?\n", err, cfg.Dashboard.Addr)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintln(os.Stdout, string(body))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		if _, err := dashboardPost(cfg, "/api/cache/clear"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\nIs `parley serve` running on %s?\n", err, cfg.Dashboard.Addr)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

func dashboardGet(cfg config.Config, path string) ([]byte, error) {
	return dashboardDo(cfg, http.MethodGet, path)
}

func dashboardPost(cfg config.Config, path string) ([]byte, error) {
	return dashboardDo(cfg, http.MethodPost, path)
}

func dashboardDo(cfg config.Config, method, path string) ([]byte, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(method, "http://"+cfg.Dashboard.Addr+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard returned %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

func init() {
	cacheStatsCmd.Flags().StringVar(&flagAddr, "addr", "", "Dashboard address override")
	cacheClearCmd.Flags().StringVar(&flagAddr, "addr", "", "Dashboard address override")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
