// NetSage is a network engineering assistant.
//
// It answers questions about a lab network by routing each question to a
// diagnostic tool, the documentation index, or the model's own knowledge.
// Tools run against either a built-in simulated lab or live devices over
// SSH. Configuration is loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	netsage serve            Start the API server
//	netsage ask <question>   Ask a single question (for testing)
//	netsage repl             Interactive question loop
//	netsage version          Print version and build information
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/netsage/netsage/internal/agent"
	"github.com/netsage/netsage/internal/api"
	"github.com/netsage/netsage/internal/buildinfo"
	"github.com/netsage/netsage/internal/config"
	"github.com/netsage/netsage/internal/docs"
	"github.com/netsage/netsage/internal/embeddings"
	"github.com/netsage/netsage/internal/llm"
	"github.com/netsage/netsage/internal/netdev"
	"github.com/netsage/netsage/internal/netlab"
	"github.com/netsage/netsage/internal/router"
	"github.com/netsage/netsage/internal/session"
	"github.com/netsage/netsage/internal/tools"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run] so the full
// startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the netsage command. All OS-level
// dependencies are injected as parameters: ctx controls the process
// lifetime, stdout and stderr receive output, and args is os.Args[1:].
// Arguments are parsed by hand; the flag package relies on package-level
// globals, which makes run() impossible to call concurrently from tests.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
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

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: netsage ask <question>")
		}
		return runAsk(ctx, stdout, configPath, strings.Join(cmdArgs, " "))
	case "repl":
		return runREPL(ctx, stdout, configPath)
	case "version":
		return runVersion(stdout)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata.
func runVersion(w io.Writer) error {
	fmt.Fprintln(w, buildinfo.String())
	info := buildinfo.Info()
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "NetSage - Network Engineering Assistant")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: netsage [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the API server")
	fmt.Fprintln(w, "  ask          Ask a single question (for testing)")
	fmt.Fprintln(w, "  repl         Interactive question loop")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./netsage.yaml, ~/.config/netsage/config.yaml, /etc/netsage/config.yaml")
	return nil
}

// runServe handles the "netsage serve" subcommand. It is the primary
// operating mode: loads config, opens the session database, builds the
// tool registry and retriever, starts the API server, and blocks until
// a shutdown signal arrives.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting NetSage", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that the desired level is known. The
	// initial Info-level logger covers only the startup banner.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}

	logger.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Listen.Port,
		"model", cfg.Model.Name,
		"provider", cfg.Model.Provider,
		"live_lab", cfg.Lab.Live,
	)

	// --- Session store ---
	// SQLite when a data directory is configured, in-memory otherwise.
	// The SQLite store persists conversations across restarts.
	var store session.Store
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
		}
		dbPath := cfg.DataDir + "/netsage.db"
		sqlStore, err := session.NewSQLiteStore(dbPath, 200)
		if err != nil {
			return fmt.Errorf("open session database %s: %w", dbPath, err)
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("session database opened", "path", dbPath)
	} else {
		store = session.NewMemoryStore(200)
		logger.Info("using in-memory session store")
	}

	loop, err := buildLoop(ctx, logger, store, cfg)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg.Listen.Address, cfg.Listen.Port, loop, store, logger)

	// --- Signal handling and graceful shutdown ---
	// NotifyContext wraps the parent context so that SIGINT/SIGTERM
	// cancellation flows through the same ctx used by all components.
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

	logger.Info("NetSage stopped")
	return nil
}

// runAsk handles the "netsage ask <question>" subcommand. It boots a
// minimal agent with an in-memory session store, processes one question,
// and prints the answer. Useful for smoke tests without the server.
func runAsk(ctx context.Context, stdout io.Writer, configPath string, question string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	loop, err := buildLoop(ctx, logger, session.NewMemoryStore(200), cfg)
	if err != nil {
		return err
	}

	result, err := loop.Ask(ctx, "cli", question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Fprintln(stdout, result.Answer)
	return nil
}

// runREPL handles the "netsage repl" subcommand: an interactive loop
// reading questions from stdin. "quit" exits and "clear" resets the
// conversation.
func runREPL(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	loop, err := buildLoop(ctx, logger, session.NewMemoryStore(200), cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "NetSage - Network Engineering Assistant")
	fmt.Fprintln(stdout, "Type 'quit' to exit, 'clear' to reset the conversation.")
	fmt.Fprintln(stdout)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(stdout, "You: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		switch {
		case question == "":
			continue
		case strings.EqualFold(question, "quit"), strings.EqualFold(question, "exit"):
			fmt.Fprintln(stdout, "Goodbye!")
			return nil
		case strings.EqualFold(question, "clear"):
			if err := loop.Clear("repl"); err != nil {
				fmt.Fprintf(stdout, "clear failed: %v\n", err)
				continue
			}
			fmt.Fprintln(stdout, "Conversation cleared.")
			continue
		}

		result, err := loop.Ask(ctx, "repl", question)
		if err != nil {
			fmt.Fprintf(stdout, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(stdout, "\nNetSage: %s\n\n", result.Answer)
	}
	return scanner.Err()
}

// buildLoop assembles the agent from configuration: completion client,
// tool registry (simulated or live), router, and optional retriever.
func buildLoop(ctx context.Context, logger *slog.Logger, store session.Store, cfg *config.Config) (*agent.Loop, error) {
	client, err := buildClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry(logger)
	if cfg.Lab.Live {
		if len(cfg.Lab.Devices) == 0 {
			return nil, fmt.Errorf("lab.live is set but no devices are configured")
		}
		runner := netdev.NewSSHRunner(cfg.Lab, logger)
		netdev.RegisterTools(registry, runner)
		logger.Info("live lab tools registered", "devices", runner.DeviceNames())
	} else {
		netlab.RegisterTools(registry)
		logger.Info("simulated lab tools registered", "tools", registry.Names())
	}

	var retriever agent.Retriever
	if cfg.Retrieval.Enabled {
		r, err := buildRetriever(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		retriever = r
	} else {
		logger.Info("documentation retrieval disabled")
	}

	rt := router.New(client, logger, 1000)
	return agent.New(logger, store, rt, registry, retriever, client), nil
}

// buildClient selects the completion backend from config. Ollama is the
// default; "anthropic" requires an API key.
func buildClient(cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	switch cfg.Model.Provider {
	case "", "ollama":
		client := llm.NewOllamaClient(cfg.Model.OllamaURL, cfg.Model.Name, logger)
		client.SetOptions(cfg.Model.Temperature, cfg.Model.NumPredict)
		return client, nil
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider selected but no api_key configured")
		}
		return llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Model.Name, logger), nil
	default:
		return nil, fmt.Errorf("unknown model provider: %q (expected ollama or anthropic)", cfg.Model.Provider)
	}
}

// buildRetriever loads the embedded runbook corpus plus any configured
// docs directory, then embeds every chunk up front. Startup fails if the
// embedding backend is unreachable; retrieval is all-or-nothing.
func buildRetriever(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*docs.Retriever, error) {
	baseURL := cfg.Retrieval.BaseURL
	if baseURL == "" {
		baseURL = cfg.Model.OllamaURL
	}
	embedder := embeddings.New(embeddings.Config{
		BaseURL: baseURL,
		Model:   cfg.Retrieval.Model,
	})

	documents, err := docs.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded docs: %w", err)
	}
	if cfg.Retrieval.DocsDir != "" {
		extra, err := docs.LoadDir(cfg.Retrieval.DocsDir)
		if err != nil {
			return nil, fmt.Errorf("load docs from %s: %w", cfg.Retrieval.DocsDir, err)
		}
		documents = append(documents, extra...)
	}

	retriever := docs.NewRetriever(embedder, cfg.Retrieval.TopK, logger)
	if err := retriever.Build(ctx, documents); err != nil {
		return nil, fmt.Errorf("build documentation index: %w", err)
	}
	logger.Info("documentation index built", "documents", len(documents), "chunks", retriever.Len(), "model", cfg.Retrieval.Model)
	return retriever, nil
}

// newLogger creates a structured text logger writing to w.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}

// loadConfig locates and parses the YAML configuration file. If explicit
// is non-empty, that exact path is used. Otherwise the default search
// paths are tried; when nothing is found, built-in defaults apply.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		if explicit != "" {
			return nil, "", err
		}
		// No config anywhere is fine for the simulated lab.
		return config.Default(), "(defaults)", nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}
