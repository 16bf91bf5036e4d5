// ABOUTME: Entry point for the torque contact dashboard
// ABOUTME: Routes to the CLI, TUI, web UI, or MCP server based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/torque/cli"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/logging"
)

const version = "0.2.0"

type command func(ctx context.Context, app *cli.App, args []string) error

// subcommands maps "group action" (or a bare group) to its handler.
var subcommands = map[string]command{
	"auth login":     cli.AuthLoginCommand,
	"auth logout":    cli.AuthLogoutCommand,
	"auth status":    cli.AuthStatusCommand,
	"contacts sync":  cli.ContactsSyncCommand,
	"contacts list":  cli.ContactsListCommand,
	"contacts stats": cli.ContactsStatsCommand,
	"deals list":     cli.DealsListCommand,
	"deals add":      cli.DealsAddCommand,
	"deals move":     cli.DealsMoveCommand,
	"deals seed":     cli.DealsSeedCommand,
	"viz pipeline":   cli.VizPipelineCommand,
	"history":        cli.HistoryCommand,
	"dashboard":      cli.DashboardCommand,
	"web":            cli.WebCommand,
	"mcp":            cli.MCPCommand,
}

// groups take an action word before their flags.
var groups = map[string]bool{"auth": true, "contacts": true, "deals": true, "viz": true}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/torque/torque.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("torque version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	logger.Debug("database ready", "path", cfg.DBPath)

	if *initOnly {
		fmt.Printf("✓ Database initialized at %s\n", cfg.DBPath)
		return
	}

	key, cmdArgs := args[0], args[1:]
	if groups[key] {
		if len(cmdArgs) == 0 {
			fmt.Printf("Error: %s requires a subcommand\n\n", key)
			printUsage()
			os.Exit(1)
		}
		key, cmdArgs = key+" "+cmdArgs[0], cmdArgs[1:]
	}

	run, ok := subcommands[key]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", key)
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger, database, version)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if err := run(ctx, app, cmdArgs); err != nil {
		stop()
		_ = database.Close()
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Printf(`torque v%s - Contact dashboard for a remote CRM directory

USAGE:
  torque [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/torque/torque.db)
  --init                 Initialize database and exit

COMMANDS:
  auth                   Sign in, sign out, and show the session
  contacts               Sync and browse directory contacts
  deals                  Manage your deal pipeline
  history                Show contact sync history
  dashboard              Open the interactive dashboard
  web                    Serve the dashboard over HTTP
  mcp                    Start MCP server for Claude Desktop
  viz                    Visualization commands

AUTH COMMANDS:
  torque auth login         Sign in with email and password
    --email <email>           Email address (prompted when omitted)
  torque auth logout        Sign out and clear the saved session
  torque auth status        Show identity configuration and current user

CONTACT COMMANDS:
  torque contacts sync      Fetch contacts from the directory
    --url <url>               Directory URL (default: TORQUE_DIRECTORY_URL)
    --key <key>               API key (default: TORQUE_DIRECTORY_API_KEY, only with the configured URL)

  torque contacts list      List contacts
    --search <text>           Filter by name, company, or status
    --offline                 Skip the directory sync
    --json                    Print JSON

  torque contacts stats     Show contact totals
    --offline                 Skip the directory sync
    --json                    Print JSON

DEAL COMMANDS:
  torque deals list         List your deals
    --stage <stage>           Filter by stage
    --json                    Print JSON

  torque deals add          Add a deal
    --title <title>           Deal title (required)
    --company <company>       Company name
    --amount <cents>          Deal amount in cents
    --stage <stage>           Stage (default: prospecting)

  torque deals move [flags] <id>  Move a deal to another stage
    --stage <stage>           Target stage (required)
    Note: flags must come before the deal ID

  torque deals seed         Create a sample pipeline for your account

OTHER COMMANDS:
  torque history            Show recent sync attempts
    --limit <n>               Max runs (default: 20)

  torque dashboard          Interactive dashboard (ASCII when not a terminal)
    --search <text>           Initial search
    --ascii                   Force the ASCII dashboard
    --offline                 Skip the initial sync (ASCII only)

  torque web                Serve the web dashboard
    --port <n>                Port (default: TORQUE_WEB_PORT or 8080)

  torque viz pipeline       Generate deal pipeline graph
    --format <fmt>            dot, svg, or png (default: dot)
    --output <file>           Output file (default: stdout)
    --all                     Include every owner's deals

EXAMPLES:
  # Sign in and pull contacts
  torque auth login --email ada@example.com
  torque contacts sync --url https://crm.example.com/api

  # Search contacts offline
  torque contacts list --search lovelace --offline

  # Render the pipeline as SVG
  torque viz pipeline --format svg --output pipeline.svg

`, version)
}
