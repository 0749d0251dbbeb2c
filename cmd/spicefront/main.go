// ABOUTME: Entry point for the spicefront storefront console
// ABOUTME: Serves the operator UI against a remote auth authority

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/vdspices/spicefront/internal/authority"
	"github.com/vdspices/spicefront/internal/config"
	"github.com/vdspices/spicefront/internal/credstore"
	"github.com/vdspices/spicefront/internal/routes"
	"github.com/vdspices/spicefront/internal/session"
	"github.com/vdspices/spicefront/internal/web"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
           _           __                 _
 ___ _ __ (_) ___ ___ / _|_ __ ___  _ __ | |_
/ __| '_ \| |/ __/ _ \ |_| '__/ _ \| '_ \| __|
\__ \ |_) | | (_|  __/  _| | | (_) | | | | |_
|___/ .__/|_|\___\___|_| |_|  \___/|_| |_|\__|
    |_|
`

// getConfigPath returns the path to the console config file.
// Priority: SPICEFRONT_CONFIG env var > XDG_CONFIG_HOME/spicefront/config.yaml > ~/.config/spicefront/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SPICEFRONT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "spicefront", "config.yaml")
}

// getDataPath returns the path to the spicefront data directory.
// Priority: XDG_DATA_HOME/spicefront > ~/.local/share/spicefront
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "spicefront")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: spicefront <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the console server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check console health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Authority: %s\n", cfg.Authority.BaseURL)
	fmt.Println()

	logger.Info("starting spicefront",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"authority", cfg.Authority.BaseURL,
	)

	creds := credstore.NewFileStore(cfg.Session.CredentialFile)

	client, err := authority.New(cfg.Authority.BaseURL, creds)
	if err != nil {
		return fmt.Errorf("creating authority client: %w", err)
	}

	manager := session.NewManager(client, creds)

	table := routes.Default()
	if len(cfg.Routes.Protected) > 0 || len(cfg.Routes.AuthOnly) > 0 {
		table = routes.New(cfg.Routes.Protected, cfg.Routes.AuthOnly, cfg.Routes.LoginPath, cfg.Routes.HomePath)
	}

	console := web.New(manager, table, cfg.Session.CookieName)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: console.Handler(),
	}

	// Resolve the stored credential while the server comes up; protected
	// pages show the loading state until this finishes.
	go manager.Initialize(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler renders colorized log lines with thread-safe writes. Group
// names become dotted key prefixes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func levelLabel(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return color.MagentaString("DEBUG")
	case slog.LevelInfo:
		return color.CyanString(" INFO")
	case slog.LevelWarn:
		return color.YellowString(" WARN")
	case slog.LevelError:
		return color.New(color.FgRed, color.Bold).Sprint("ERROR")
	default:
		return level.String()
	}
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05.000")))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(r.Level))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")
	writeAttr := func(a slog.Attr) {
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		buf.WriteString(color.HiBlackString(" " + key + "="))
		buf.WriteString(a.Value.String())
	}

	// Handler-level attrs (from WithAttrs) come before record attrs.
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	buf.WriteByte('\n')
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("spicefront configuration setup")
	fmt.Println("==============================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultCredPath := filepath.Join(defaultDataPath, "credential")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	// Authority
	fmt.Println("\n--- Authority Configuration ---")
	authorityURL := prompt(reader, "Auth authority base URL", "http://localhost:9090")

	// Session
	fmt.Println("\n--- Session Configuration ---")
	cookieName := prompt(reader, "Session cookie name", "vd_session")
	credFile := prompt(reader, "Credential file path", defaultCredPath)

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# spicefront configuration\n")
	cfg.WriteString("# Generated by spicefront init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("authority:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: \"%s\"\n", authorityURL))
	cfg.WriteString("\n")

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  cookie_name: \"%s\"\n", cookieName))
	cfg.WriteString(fmt.Sprintf("  credential_file: \"%s\"\n", credFile))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	credDir := filepath.Dir(credFile)
	if err := os.MkdirAll(credDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", credDir)
	fmt.Println("\nTo start the console:")
	fmt.Printf("  spicefront serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
