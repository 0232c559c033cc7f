package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/sp00kydogz/CuadernoCLI/internal"
	pkgconfig "github.com/sp00kydogz/CuadernoCLI/pkg/config"
)

var version = "dev"

// loadConfig reads the optional config file and applies the --root override.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// The flag wins over the file.
	if root := cmd.String("root"); root != "" {
		cfg.Notebook.Root = root
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("watch") {
		cfg.Watch.Enabled = true
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "cuaderno",
		Usage:   "Index, search and edit a folder of Markdown and text notes",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Notebook root directory (overrides notebook.root)",
				Sources: cli.EnvVars("CUADERNO_ROOT"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log progress to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live events",
				Action: serve,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Usage: "Reindex when notes change"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the note tools over MCP on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:   "reindex",
				Usage:  "Rescan the notebook and save the index",
				Action: reindexCmd,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-summary", Usage: "Leave summaries out of the index"},
				},
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List indexed notes, newest first",
				ArgsUsage: "[tags:<name> | YYYY-MM | category | subcategory]",
				Action:    listCmd,
			},
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Ranked search over the index",
				ArgsUsage: "<terms> [tag:x] [cat:x] [sub:x] [date:x]",
				Description: heredoc.Doc(`
					Every free term must appear in the title, path, category,
					subcategory, date, summary or a tag. "Quoted phrases" count as
					one term. Qualifiers filter before ranking:

					  tag:Cisco     entries with that tag (any case)
					  cat:Estudios  first folder
					  sub:Redes     second folder
					  date:2025-09  date prefix

					Results rank by where terms matched, then by recency.
				`),
				Action: searchCmd,
			},
			{
				Name:      "view",
				Usage:     "Print a note by number or path, or pick one interactively",
				ArgsUsage: "[number|path]",
				Action:    viewCmd,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "raw", Usage: "Print the file as stored"},
				},
			},
			{
				Name:      "new",
				Usage:     "Create a dated note with a header",
				ArgsUsage: "<title>",
				Action:    newCmd,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Folder under the root"},
				},
			},
			{
				Name:      "meta",
				Usage:     "Edit a note header",
				ArgsUsage: `<number|path> [title:"..."] [date:YYYY-MM-DD] [tags:a,b] [+tag:x] [-tag:y]`,
				Description: heredoc.Doc(`
					Operations apply left to right:

					  title:"Nuevo título"  set the title
					  date:2025-09-10       set the date
					  tags:a,b,c            replace all tags
					  +tag:x                add a tag unless present (any case)
					  -tag:x                remove a tag (any case)

					A note without a date gets today's.
				`),
				Action: metaCmd,
				// Operations like -tag:x are arguments, not flags.
				SkipFlagParsing: true,
			},
			{
				Name:            "append",
				Usage:           "Append text to a note",
				ArgsUsage:       "<number|path> <text>",
				Action:          appendCmd,
				SkipFlagParsing: true,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
