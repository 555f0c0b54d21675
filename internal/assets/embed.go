// Package assets serves the console's stylesheet and script embedded via go:embed.
// Each file is fingerprinted with a content hash at startup so templates can
// link to a URL that changes whenever the file does, and the file server can
// mark hashed URLs immutable.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
)

//go:embed static
var staticFS embed.FS

// ManifestEntry maps one embedded file to its fingerprinted name.
type ManifestEntry struct {
	File string // e.g. "console.1a2b3c4d.css"
	Src  string // e.g. "console.css"
	Hash string
}

// Manifest maps source names to their fingerprinted entries.
// NOTE: Exported and mutable for testability. Not safe for concurrent mutation;
// tests that modify this must not use t.Parallel().
var Manifest map[string]ManifestEntry

// hashed is the reverse of Manifest: fingerprinted name to source name.
var hashed map[string]string

// hashPattern detects content hashes in filenames (e.g. ".1a2b3c4d.").
var hashPattern = regexp.MustCompile(`\.[a-zA-Z0-9_-]{8,}\.`)

func init() {
	_ = mime.AddExtensionType(".woff2", "font/woff2")
	_ = mime.AddExtensionType(".map", "application/json")

	if err := buildManifest(); err != nil {
		slog.Error("failed to fingerprint static assets", "error", err)
	}
}

func buildManifest() error {
	entries, err := fs.ReadDir(staticFS, "static")
	if err != nil {
		return err
	}
	Manifest = make(map[string]ManifestEntry, len(entries))
	hashed = make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		data, err := fs.ReadFile(staticFS, "static/"+name)
		if err != nil {
			return err
		}
		e := fingerprint(name, data)
		Manifest[name] = e
		hashed[e.File] = name
	}
	return nil
}

// fingerprint inserts the first 8 hex characters of the content's SHA-256
// before the extension.
func fingerprint(name string, data []byte) ManifestEntry {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])[:8]
	ext := path.Ext(name)
	return ManifestEntry{
		File: strings.TrimSuffix(name, ext) + "." + hash + ext,
		Src:  name,
		Hash: hash,
	}
}

// containsHash reports whether the given path contains a content hash
// (8+ characters between dots, e.g. "console.a1b2c3d4.js").
func containsHash(p string) bool {
	return hashPattern.MatchString(p)
}

// mimeFromExt returns the MIME type for a file extension.
// Falls back to the Go standard library's MIME type database,
// then to "application/octet-stream" if unknown.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".woff2":
		return "font/woff2"
	case ".svg":
		return "image/svg+xml"
	case ".map":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// Path returns the URL templates should link to for a static file. Unknown
// names fall back to the plain, uncached URL.
func Path(name string) string {
	if e, ok := Manifest[name]; ok {
		return "/static/" + e.File
	}
	return "/static/" + name
}

// FileServer returns an http.Handler that serves embedded assets from static/.
// Fingerprinted names get immutable cache headers; plain names get no-cache.
// The handler expects paths relative to the static root (strip /static/ before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")

		// Set content type explicitly for known extensions
		ext := strings.ToLower(path.Ext(name))
		if ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}

		if src, ok := hashed[name]; ok && containsHash(name) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/" + src
			r = r2
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		fileServer.ServeHTTP(w, r)
	})
}
