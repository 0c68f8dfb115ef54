package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/dictlite/pkg/core"
	"github.com/liliang-cn/dictlite/pkg/importer"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dict",
	Short: "CLI for dictlite dictionary databases",
	Long:  `Build, inspect and query dictlite SQLite dictionary databases.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty dictionary database",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		fmt.Printf("Dictionary database initialized at %s\n", dbPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <jsonl-file>",
	Short: "Bulk-import a JSONL dictionary export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonlPath := args[0]
		batchSize, _ := cmd.Flags().GetInt("batch-size")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		opts := importer.DefaultOptions()
		opts.BatchSize = batchSize
		opts.Logger = cliLogger()

		im := importer.New(store, opts)
		stats, err := im.ImportFile(context.Background(), jsonlPath, func(processed, total int64) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\rimporting... %d/%d", processed, total)
			} else {
				fmt.Fprintf(os.Stderr, "\rimporting... %d", processed)
			}
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			if errors.Is(err, importer.ErrImportAborted) {
				// Earlier batches were committed; a truncated database is
				// worse than none.
				_ = store.Close()
				_ = os.Remove(dbPath)
				return fmt.Errorf("input rejected, removed partial database: %w", err)
			}
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Imported %d entries (%d lines, %d skipped, %d deduped)\n",
			stats.Imported, stats.Processed, stats.Skipped, stats.Deduped)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the dictionary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		results, hasMore, err := store.Search(context.Background(), args[0], limit, offset)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if asJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		for _, r := range results {
			fmt.Printf("%8d  %-24s %-12s %.2f  %s\n", r.ID, r.Word, r.POS, r.Score, r.Preview)
		}
		if hasMore {
			fmt.Printf("... more results, rerun with --offset %d\n", offset+len(results))
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <word-id>",
	Short: "Print the full definition for a word id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wordID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid word id %q", args[0])
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		full, err := store.GetDefinition(context.Background(), wordID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				fmt.Printf("No word with id %d\n", wordID)
				return nil
			}
			return fmt.Errorf("lookup failed: %w", err)
		}

		data, err := json.MarshalIndent(full, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		counts, err := store.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}

		for _, table := range []string{"words", "definitions", "pronunciations", "etymologies", "translations"} {
			fmt.Printf("%-16s %d\n", table, counts[table])
		}
		return nil
	},
}

// openStore opens and initializes the store at the configured path
func openStore() (*core.DictStore, error) {
	config := core.DefaultConfig()
	config.Path = dbPath
	config.Logger = cliLogger()

	store, err := core.NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func cliLogger() core.Logger {
	if verbose {
		return core.NewStdLogger(core.LevelDebug)
	}
	return core.NewStdLogger(core.LevelWarn)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "dictionary.db", "Database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	importCmd.Flags().Int("batch-size", 1000, "Lines per transaction")
	searchCmd.Flags().Int("limit", 20, "Maximum results")
	searchCmd.Flags().Int("offset", 0, "Result offset for pagination")
	searchCmd.Flags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(initCmd, importCmd, searchCmd, getCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
