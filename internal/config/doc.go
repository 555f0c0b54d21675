// Package config handles configuration loading for bloodlink-console.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BLOODLINK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/bloodlink/console.yaml
//  3. ~/.config/bloodlink/console.yaml
//
// Files ending in .toml are decoded as TOML with the same keys.
//
// # Environment
//
// A .env file next to the config file, and one in the working directory,
// are loaded before parsing. Values already set in the environment are kept.
// Configuration values can then reference environment variables:
//
//	identity:
//	  jwt_secret: "${BLOODLINK_JWT_SECRET}"
//
// # Example
//
//	server:
//	  http_addr: "localhost:8080"
//	  base_url: "https://console.bloodlink.site"
//
//	backend:
//	  base_url: "https://api-dev.bloodlink.site"
//	  timeout: "15s"
//
//	identity:
//	  jwt_secret: "${BLOODLINK_JWT_SECRET}"
//	  sign_in_url: "https://accounts.bloodlink.site/sign-in"
//	  session_ttl: "12h"
//
//	database:
//	  path: "/var/lib/bloodlink/console.db"
//
//	cache:
//	  ttl: "30s"
//	  max_entries: 1000
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text or json
package config
