package cmd

import (
	"fmt"
	"os"

	"github.com/arcanaland/setsheet/internal/config"
	"github.com/arcanaland/setsheet/internal/fetch"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the download cache",
	Long:  `Commands for managing the cached MTGJSON downloads.`,
}

// cacheListCmd represents the cache ls command
var cacheListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cacheDir := cfg.GetCacheDir()

		if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
			fmt.Fprintf(out, "Cache at %s does not exist.\n", cacheDir)
			fmt.Fprintln(out, "Run 'setsheet cache init' to create it.")
			return nil
		}

		resources, err := cacheFetcher().CachedResources()
		if err != nil {
			return err
		}

		if len(resources) == 0 {
			fmt.Fprintln(out, "No cached downloads in", cacheDir)
			return nil
		}

		var total int64
		for _, res := range resources {
			fmt.Fprintf(out, "  %-40s %s\n", res.Name, humanSize(res.Size))
			total += res.Size
		}
		fmt.Fprintf(out, "%d files, %s in %s\n", len(resources), humanSize(total), cacheDir)
		return nil
	},
}

// cacheClearCmd represents the cache clear command
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := cacheFetcher().Clear()
		if err != nil {
			return fmt.Errorf("error clearing cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached downloads.\n", removed)
		return nil
	},
}

// cacheInitCmd represents the cache init command
var cacheInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the cache directory and config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cacheDir := cfg.GetCacheDir()

		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return fmt.Errorf("error creating cache directory: %w", err)
		}
		fmt.Fprintln(out, "Cache initialized at:", cacheDir)

		// The config file is created with defaults when loaded
		path := configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}
		fmt.Fprintln(out, "Config file initialized at:", path)
		return nil
	},
}

func cacheFetcher() *fetch.Fetcher {
	return newFetcher(cfg, newHTTPClient(cfg), logger)
}

func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInitCmd)
}
