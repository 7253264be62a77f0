// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citetree/internal/analyze"
	"github.com/pdiddy/citetree/internal/export"
	"github.com/pdiddy/citetree/internal/s2"
	"github.com/pdiddy/citetree/internal/tree"
	"github.com/pdiddy/citetree/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build ROOT_ID [ROOT_ID...]",
	Short: "Build citation trees by breadth-first expansion from root papers",
	Long: `Build fetches each root paper from Semantic Scholar, then expands its
references level by level until the maximum depth. Papers are fetched in
batches of up to 500, paced by the inter-request delay, and each identifier
is fetched at most once per tree.

Root identifiers use any form the API accepts, e.g. "ARXIV:1706.03762",
a DOI, or a raw Semantic Scholar paper ID. With several roots, one
independent tree is built per root.

Without an API key (flag, CITETREE_API_KEY, or .secrets/semantic-scholar-api-key)
requests run under the much stricter anonymous rate limits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	clientCfg, buildCfg := buildConfigFromFlags(cmd)

	quiet, _ := cmd.Flags().GetBool("quiet")
	var progress io.Writer = os.Stdout
	if quiet {
		progress = io.Discard
	}

	if clientCfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no API key configured, anonymous rate limits apply")
	}

	client := s2.NewClient(clientCfg, nil, progress)
	builder := tree.NewBuilder(client, buildCfg, progress)

	trees, err := builder.BuildAll(context.Background(), args)
	if err != nil {
		return err
	}

	if err := exportTrees(cmd, trees, progress); err != nil {
		return err
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		for _, t := range trees {
			analyze.FromDocument(export.DocumentFromTree(t)).Format(os.Stdout)
		}
	}

	return nil
}

// exportTrees routes the built trees to each sink selected by flags.
func exportTrees(cmd *cobra.Command, trees []*tree.Tree, progress io.Writer) error {
	dropExisting, _ := cmd.Flags().GetBool("drop-existing")

	if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
		for i, t := range trees {
			path := jsonPath
			if len(trees) > 1 {
				path = numberedPath(jsonPath, i+1)
			}
			if err := export.WriteJSON(t, path); err != nil {
				return err
			}
			fmt.Fprintf(progress, "wrote %s (%d papers)\n", path, t.Size())
		}
	}

	if sqlitePath, _ := cmd.Flags().GetString("sqlite"); sqlitePath != "" {
		table, _ := cmd.Flags().GetString("table")
		e, err := export.NewSQLiteExporter(types.SQLiteConfig{Path: sqlitePath, Table: table})
		if err != nil {
			return err
		}
		defer e.Close()
		for i, t := range trees {
			// Only the first export may recreate the table, or later trees
			// would wipe out earlier ones.
			if err := e.Export(context.Background(), t, dropExisting && i == 0, progress); err != nil {
				return err
			}
		}
	}

	if usePostgres, _ := cmd.Flags().GetBool("postgres"); usePostgres {
		ctx := context.Background()
		pgCfg := postgresConfigFromViper(cmd)

		conn, err := export.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)

		e, err := export.NewPostgresExporter(conn, pgCfg.Table)
		if err != nil {
			return err
		}
		for i, t := range trees {
			if err := e.Export(ctx, t, dropExisting && i == 0, progress); err != nil {
				return err
			}
		}
	}

	return nil
}

// numberedPath inserts a 1-based index before the extension:
// tree.json -> tree-2.json.
func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + fmt.Sprintf("-%d", n) + ext
}

func buildConfigFromFlags(cmd *cobra.Command) (types.ClientConfig, types.BuildConfig) {
	apiKey, _ := cmd.Flags().GetString("api-key")
	delay, _ := cmd.Flags().GetDuration("delay")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	fields, _ := cmd.Flags().GetString("fields")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}
	apiKey = secretDefault("semantic-scholar-api-key", apiKey)

	clientCfg := types.ClientConfig{
		APIKey:       apiKey,
		RequestDelay: delay,
		MaxRetries:   maxRetries,
		BatchSize:    batchSize,
		Fields:       fields,
	}
	buildCfg := types.BuildConfig{
		MaxDepth: maxDepth,
		Verbose:  !quiet,
	}
	return clientCfg, buildCfg
}

func postgresConfigFromViper(cmd *cobra.Command) types.PostgresConfig {
	cfg := types.PostgresConfig{
		Host:     viper.GetString("postgres.host"),
		Port:     viper.GetInt("postgres.port"),
		Database: viper.GetString("postgres.database"),
		User:     viper.GetString("postgres.user"),
		Password: viper.GetString("postgres.password"),
	}
	if cfg.Database == "" {
		cfg.Database = "paper_db"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}
	cfg.Table, _ = cmd.Flags().GetString("table")
	return cfg
}

func init() {
	buildCmd.Flags().Int("max-depth", 2, "maximum traversal depth from the root")
	buildCmd.Flags().Duration("delay", 1500*time.Millisecond, "delay between batch requests")
	buildCmd.Flags().Int("max-retries", 3, "retry attempts for failed batch requests")
	buildCmd.Flags().Int("batch-size", 0, "identifiers per batch request (0 = API maximum)")
	buildCmd.Flags().String("fields", "", "field selector for batch requests (empty = default set)")
	buildCmd.Flags().String("api-key", "", "Semantic Scholar API key")
	buildCmd.Flags().Bool("quiet", false, "suppress progress output")
	buildCmd.Flags().Bool("stats", false, "print tree statistics after the build")

	buildCmd.Flags().String("json", "", "write the tree to this JSON file")
	buildCmd.Flags().String("sqlite", "", "export the tree to this SQLite database file")
	buildCmd.Flags().Bool("postgres", false, "export the tree to PostgreSQL (connection from config)")
	buildCmd.Flags().String("table", "", "destination table name for relational exports")
	buildCmd.Flags().Bool("drop-existing", false, "recreate the destination table before exporting")

	rootCmd.AddCommand(buildCmd)
}
