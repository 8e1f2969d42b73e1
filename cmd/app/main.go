package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/ideaservice"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/skill"
	"github.com/starford/ansuz/internal/store"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

// loadConfig loads the YAML config, falling back to defaults when the
// file does not exist. A --db flag overrides the store path for the
// tool-style commands.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if db := cmd.String("db"); db != "" {
		cfg.Store.Path = db
	}
	return cfg, nil
}

func openStore(cmd *cli.Command) (*store.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Path)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func initStore(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Writer, "store ready at %s (%d ideas)\n", cfg.Store.Path, n)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(ideaservice.NewService(db, nil))
	return srv.ServeStdio()
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	filter := store.SelectFilter{
		Since:     cmd.String("since"),
		Until:     cmd.String("until"),
		Source:    cmd.String("source"),
		Search:    cmd.String("search"),
		Limit:     int(cmd.Int("limit")),
		Ascending: cmd.String("order") == "asc",
	}

	e := export.New(db)
	if cmd.Bool("stdout") {
		doc, _, err := e.Render(filter, cmd.String("format"))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.Writer, doc)
		return nil
	}

	path, n, err := e.Run(export.Options{
		Filter: filter,
		Format: cmd.String("format"),
		Output: cmd.String("output"),
		Dir:    cfg.Exports.Dir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Writer, "exported %d ideas to %s\n", n, path)
	return nil
}

func runSkill(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: ansuz skill <name> [json], where name is one of: %s",
			strings.Join(skill.Names(), ", "))
	}

	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r := skill.NewRunner(ideaservice.NewService(db, nil), os.Stdin, cmd.Writer)
	return r.Run(ctx, name, cmd.Args().Get(1))
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	dbFlag := &cli.StringFlag{
		Name:  "db",
		Usage: "Path to SQLite database (overrides config)",
	}

	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Personal knowledge base with tagged ideas, relations, and keyword search",
		Action: serve,
		Flags:  []cli.Flag{configFlag, dbFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server and inbox importer",
				Action: serve,
				Flags:  []cli.Flag{configFlag, dbFlag},
			},
			{
				Name:   "init",
				Usage:  "Create the database and apply the schema",
				Action: initStore,
				Flags:  []cli.Flag{configFlag, dbFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio for LLM clients",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag, dbFlag},
			},
			{
				Name:   "export",
				Usage:  "Export ideas to a file or stdout",
				Action: runExport,
				Flags: []cli.Flag{
					configFlag,
					dbFlag,
					&cli.StringFlag{Name: "since", Usage: "Only ideas created on or after this date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "until", Usage: "Only ideas created on or before this date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "source", Usage: "Filter by source (chat, web, inbox, mcp)"},
					&cli.StringFlag{Name: "search", Usage: "Filter by substring in title or content"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum ideas to export", Value: 100},
					&cli.StringFlag{Name: "order", Usage: "Sort order: asc or desc", Value: "desc"},
					&cli.StringFlag{Name: "format", Usage: "Output format: markdown, compact, json, digest", Value: "markdown"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: timestamped file in exports dir)"},
					&cli.BoolFlag{Name: "stdout", Usage: "Print to stdout instead of writing a file"},
				},
			},
			{
				Name:      "skill",
				Usage:     "Run a skill adapter (JSON in, JSON out)",
				ArgsUsage: "<name> [json]",
				Action:    runSkill,
				Flags:     []cli.Flag{configFlag, dbFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
