// ABOUTME: init subcommand writing a console config file interactively
// ABOUTME: Prompts for each section and generates a random identity secret if none is given

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/bloodlink-console/internal/config"
)

type initAnswers struct {
	httpAddr   string
	baseURL    string
	backendURL string
	timeout    string
	jwtSecret  string
	signInURL  string
	sessionTTL string
	dbPath     string
	cacheTTL   string
	logLevel   string
	logFormat  string
}

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "bloodlink-console configuration setup")
	fmt.Fprintln(out, "=====================================")
	fmt.Fprintln(out)

	outputFile := prompt(reader, out, "Config file path", getConfigPath())

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, out, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var a initAnswers

	fmt.Fprintln(out, "\n--- Server Configuration ---")
	a.httpAddr = prompt(reader, out, "HTTP address", config.DefaultHTTPAddr)
	a.baseURL = prompt(reader, out, "External URL", "http://"+a.httpAddr)

	fmt.Fprintln(out, "\n--- Backend Configuration ---")
	a.backendURL = prompt(reader, out, "BloodLink API URL", "http://localhost:3000/api")
	a.timeout = prompt(reader, out, "Request timeout", config.DefaultBackendTimeout.String())

	fmt.Fprintln(out, "\n--- Identity Configuration ---")
	a.signInURL = prompt(reader, out, "Identity provider sign-in URL (leave empty for dev tokens)", "")
	a.jwtSecret = prompt(reader, out, "Token secret (leave empty to generate)", "")
	if a.jwtSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			return err
		}
		a.jwtSecret = secret
	}
	a.sessionTTL = prompt(reader, out, "Session lifetime", config.DefaultSessionTTL.String())

	fmt.Fprintln(out, "\n--- Database Configuration ---")
	a.dbPath = prompt(reader, out, "SQLite database path", filepath.Join(getDataPath(), "console.db"))

	fmt.Fprintln(out, "\n--- Cache Configuration ---")
	a.cacheTTL = prompt(reader, out, "Query cache TTL", config.DefaultCacheTTL.String())

	fmt.Fprintln(out, "\n--- Logging Configuration ---")
	a.logLevel = prompt(reader, out, "Log level (debug/info/warn/error)", "info")
	a.logFormat = prompt(reader, out, "Log format (text/json)", "text")

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(a.dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  bloodlink-console serve")

	return nil
}

func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# bloodlink-console configuration\n")
	cfg.WriteString("# Generated by bloodlink-console init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.httpAddr))
	cfg.WriteString(fmt.Sprintf("  base_url: %q\n", a.baseURL))
	cfg.WriteString("\n")

	cfg.WriteString("backend:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: %q\n", a.backendURL))
	cfg.WriteString(fmt.Sprintf("  timeout: %q\n", a.timeout))
	cfg.WriteString("\n")

	cfg.WriteString("identity:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n", a.jwtSecret))
	cfg.WriteString(fmt.Sprintf("  sign_in_url: %q\n", a.signInURL))
	cfg.WriteString(fmt.Sprintf("  session_ttl: %q\n", a.sessionTTL))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", a.dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("cache:\n")
	cfg.WriteString(fmt.Sprintf("  ttl: %q\n", a.cacheTTL))
	cfg.WriteString(fmt.Sprintf("  max_entries: %d\n", config.DefaultCacheEntries))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.logFormat))

	return cfg.String()
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
