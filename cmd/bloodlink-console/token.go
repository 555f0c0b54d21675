// ABOUTME: token subcommand minting development sign-in tokens
// ABOUTME: Signs with the configured secret so the console accepts them at /auth/callback

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/config"
)

type tokenOptions struct {
	subject    string
	role       auth.Role
	givenName  string
	familyName string
	email      string
	ttl        time.Duration
}

func parseTokenArgs(args []string) (tokenOptions, error) {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts tokenOptions
	var role, name string
	fs.StringVar(&opts.subject, "sub", "", "subject (user id)")
	fs.StringVar(&role, "role", "", "admin, doctor or staff")
	fs.StringVar(&name, "name", "", "display name, split into given and family name")
	fs.StringVar(&opts.email, "email", "", "email claim")
	fs.DurationVar(&opts.ttl, "ttl", time.Hour, "token lifetime")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	opts.subject = strings.TrimSpace(opts.subject)
	if opts.subject == "" {
		return opts, errors.New("--sub flag is required")
	}
	r, ok := auth.ParseRole(role)
	if !ok {
		return opts, fmt.Errorf("--role must be admin, doctor or staff, got %q", role)
	}
	opts.role = r
	if opts.ttl <= 0 {
		return opts, errors.New("--ttl must be positive")
	}

	given, family, _ := strings.Cut(strings.TrimSpace(name), " ")
	opts.givenName = given
	opts.familyName = strings.TrimSpace(family)
	return opts, nil
}

func runToken(args []string, out io.Writer) error {
	opts, err := parseTokenArgs(args)
	if err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return mintToken(cfg, opts, out)
}

// mintToken prints the token and a callback URL that signs the browser in.
func mintToken(cfg *config.Config, opts tokenOptions, out io.Writer) error {
	verifier := auth.NewJWTVerifier([]byte(cfg.Identity.JWTSecret))
	token, err := verifier.Generate(auth.Claims{
		Subject:    opts.subject,
		Role:       opts.role,
		GivenName:  opts.givenName,
		FamilyName: opts.familyName,
		Email:      opts.email,
	}, opts.ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Fprintln(out, token)
	fmt.Fprintf(out, "\nSign in: %s/auth/callback?token=%s\n", cfg.Server.BaseURL, url.QueryEscape(token))
	return nil
}
