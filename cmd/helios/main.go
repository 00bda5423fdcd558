// Helios is the Helios Dynamics ERP assistant.
//
// It answers natural-language questions about customers, orders, leads,
// invoices, inventory, and reporting by dispatching them to domain
// handlers over the company's SQLite ERP database, optionally through an
// LLM-driven reasoning loop. Configuration is loaded from a single YAML
// file discovered automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	helios serve             Start the API server and dashboard
//	helios ask [question]    Ask a question, or start a REPL with no args
//	helios seed              Create and populate the demo business tables
//	helios version           Print version and build information
//	helios -o json version   Output version information as JSON
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/heliosdynamics/helios/internal/agent"
	"github.com/heliosdynamics/helios/internal/analytics"
	"github.com/heliosdynamics/helios/internal/api"
	"github.com/heliosdynamics/helios/internal/buildinfo"
	"github.com/heliosdynamics/helios/internal/classify"
	"github.com/heliosdynamics/helios/internal/config"
	"github.com/heliosdynamics/helios/internal/erp"
	"github.com/heliosdynamics/helios/internal/finance"
	"github.com/heliosdynamics/helios/internal/inventory"
	"github.com/heliosdynamics/helios/internal/llm"
	"github.com/heliosdynamics/helios/internal/memory"
	"github.com/heliosdynamics/helios/internal/sales"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdout, and os.Args out of the application logic so the
// full lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the helios command. All OS-level
// dependencies are injected as parameters. Arguments are parsed by hand:
// the flag package relies on package-level globals (flag.CommandLine),
// which makes it impossible to call run() concurrently from tests, and
// the argument surface here is small enough that manual parsing is
// clearer than bringing in a CLI framework.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "ask":
		return runAsk(ctx, stdout, configPath, cmdArgs)
	case "seed":
		return runSeed(stdout, configPath)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Helios - ERP Assistant")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: helios [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve            Start the API server and dashboard")
	fmt.Fprintln(w, "  ask [question]   Ask a question, or start a REPL with no args")
	fmt.Fprintln(w, "  seed             Create and populate the demo business tables")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./helios.yaml, ~/.config/helios/helios.yaml, /etc/helios/helios.yaml")
	return nil
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// runSeed handles "helios seed": creates the demo business schema and
// inserts sample rows so the assistant has data to talk about.
func runSeed(stdout io.Writer, configPath string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := erp.CreateSchema(db); err != nil {
		return err
	}
	if err := erp.Seed(db); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Seeded demo data into %s\n", cfg.Database.Path)
	return nil
}

// runAsk handles "helios ask". With arguments it answers a single
// question; without, it starts an interactive REPL against the same
// router the server uses.
func runAsk(ctx context.Context, stdout io.Writer, configPath string, args []string) error {
	logger := newLogger(io.Discard, slog.LevelInfo)

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	router, _, err := buildRouter(logger, cfg, db)
	if err != nil {
		return err
	}

	sessionID := fmt.Sprintf("cli-%d", os.Getpid())

	if len(args) > 0 {
		response, _ := router.Chat(ctx, "cli", sessionID, strings.Join(args, " "))
		fmt.Fprintln(stdout, response)
		return nil
	}

	// Interactive REPL.
	prompt := color.New(color.FgCyan, color.Bold)
	answer := color.New(color.FgGreen)

	fmt.Fprintln(stdout, buildinfo.String())
	fmt.Fprintln(stdout, "Ask about customers, orders, invoices, inventory, or reports. Ctrl-D to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Fprint(stdout, "helios> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdout)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		response, _ := router.Chat(ctx, "cli", sessionID, question)
		answer.Fprintln(stdout, response)
	}
}

// runServe handles "helios serve": opens the database, wires the domain
// handlers and router, starts the HTTP server, and blocks until a
// shutdown signal arrives.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting Helios",
		"version", buildinfo.Version,
		"commit", buildinfo.GitCommit,
		"built", buildinfo.BuildTime,
	)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that the desired level is known.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}

	logger.Info("config loaded",
		"path", cfgPath,
		"listen", listenAddr(cfg),
		"database", cfg.Database.Path,
		"llm_provider", cfg.LLM.Provider,
	)

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	router, store, err := buildRouter(logger, cfg, db)
	if err != nil {
		return err
	}

	server := api.NewServer(listenAddr(cfg), router, store, logger)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		_ = server.Shutdown(context.Background())
	}()

	if err := server.Start(ctx); err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("Helios stopped")
	return nil
}

// buildRouter assembles the domain handlers, completion client, and
// conversation store into the router.
func buildRouter(logger *slog.Logger, cfg *config.Config, db *sql.DB) (*agent.Agent, *memory.Store, error) {
	store, err := memory.NewStore(db)
	if err != nil {
		return nil, nil, err
	}

	handlers := map[classify.Domain]agent.DomainHandler{
		classify.DomainSales:     sales.NewHandler(logger, db),
		classify.DomainFinance:   finance.NewHandler(logger, db),
		classify.DomainInventory: inventory.NewHandler(logger, db),
		classify.DomainAnalytics: analytics.NewHandler(logger, db),
	}

	router, err := agent.New(logger, store, handlers, agent.Options{
		LLM:           buildLLMClient(logger, cfg),
		MaxIterations: cfg.Agent.MaxIterations,
		HistoryLimit:  cfg.Agent.HistoryLimit,
		MaxAmount:     cfg.Governance.MaxAmount,
		MaxUnits:      cfg.Governance.MaxUnits,
		Fallback:      classify.Domain(cfg.Classifier.Fallback),
	})
	if err != nil {
		return nil, nil, err
	}

	return router, store, nil
}

// buildLLMClient creates the completion client for the configured
// provider. "ollama" and "openai" can be combined into a failover chain
// by configuring both; an empty provider disables LLM dispatch and the
// router runs on keyword classification alone.
func buildLLMClient(logger *slog.Logger, cfg *config.Config) llm.Client {
	var clients []llm.Client

	switch cfg.LLM.Provider {
	case "ollama":
		clients = append(clients, llm.NewOllamaClient(cfg.LLM.OllamaURL, cfg.LLM.Model))
		if cfg.LLM.OpenAI.APIKey != "" {
			clients = append(clients, llm.NewOpenAIClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL, cfg.LLM.OpenAI.Model))
		}
	case "openai":
		clients = append(clients, llm.NewOpenAIClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL, cfg.LLM.OpenAI.Model))
	case "":
		return nil
	default:
		logger.Warn("unknown llm provider, running without LLM dispatch", "provider", cfg.LLM.Provider)
		return nil
	}

	if len(clients) == 1 {
		return clients[0]
	}
	return llm.NewFailover(logger, clients...)
}

// openDatabase opens the SQLite database with WAL journaling and a busy
// timeout so the server and CLI can share the file.
func openDatabase(path string) (*sql.DB, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf("%s:%d", cfg.Listen.Address, cfg.Listen.Port)
}

// loadConfig locates and parses the YAML configuration file. An explicit
// -config path must exist. Without one, the default search paths are
// tried; if nothing is found the built-in defaults are used, so the demo
// works out of the box.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		if explicit != "" {
			return nil, "", err
		}
		return config.Default(), "(defaults)", nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}

// newLogger creates a structured text logger writing to w.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}
