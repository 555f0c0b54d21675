// ABOUTME: Entry point for the BloodLink staff and admin web console
// ABOUTME: Dispatches the serve, init, token and health subcommands

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/bloodlink-console/internal/config"
	"github.com/2389/bloodlink-console/internal/gateway"
)

// version is set with -ldflags at build time.
var version = "dev"

const banner = `
  _     _                 _ _ _       _
 | |__ | | ___   ___   __| | (_)_ __ | | __
 | '_ \| |/ _ \ / _ \ / _' | | | '_ \| |/ /
 | |_) | | (_) | (_) | (_| | | | | | |   <
 |_.__/|_|\___/ \___/ \__,_|_|_|_| |_|_|\_\
`

// getConfigPath returns the path to the console config file.
// Priority: BLOODLINK_CONFIG env var > XDG_CONFIG_HOME/bloodlink/console.yaml > ~/.config/bloodlink/console.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BLOODLINK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "console.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bloodlink", "console.yaml")
}

// getDataPath returns the path to the bloodlink data directory.
// Priority: XDG_DATA_HOME/bloodlink > ~/.local/share/bloodlink
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "bloodlink")
}

func usage() {
	fmt.Println("Usage: bloodlink-console <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                          Start the console server")
	fmt.Println("  init                           Create a new config file interactively")
	fmt.Println("  token --sub ID --role ROLE     Mint a development sign-in token")
	fmt.Println("  health                         Check console health")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "token":
		err = runToken(os.Args[2:], os.Stdout)
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		usage()
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

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Console:   ")
	cyan.Println(cfg.Server.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Backend:   %s\n", cfg.Backend.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Identity.SignInURL == "" {
		color.New(color.FgYellow).Println("    ! identity.sign_in_url not set; use `bloodlink-console token` to sign in")
	}
	fmt.Println()

	logger.Info("starting bloodlink-console",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"backend", cfg.Backend.BaseURL,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating console: %w", err)
	}

	return gw.Run(ctx)
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return checkHealth(ctx, http.DefaultClient, "http://"+cfg.Server.HTTPAddr)
}

// checkHealth probes the liveness and readiness endpoints under base.
func checkHealth(ctx context.Context, client *http.Client, base string) error {
	for _, path := range []string{"/health", "/health/ready"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unhealthy: %s returned status %d", path, resp.StatusCode)
		}
	}

	fmt.Println("healthy")
	return nil
}
