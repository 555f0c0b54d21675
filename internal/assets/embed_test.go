package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContainsHash(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"console.a1b2c3d4.js", true},
		{"console.0f9e8d7c.css", true},
		{"console.css", false},
		{"console.js", false},
		{".gitkeep", false},
	}
	for _, tt := range tests {
		if got := containsHash(tt.path); got != tt.want {
			t.Errorf("containsHash(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMimeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".js", "application/javascript"},
		{".mjs", "application/javascript"},
		{".css", "text/css; charset=utf-8"},
		{".woff2", "font/woff2"},
		{".svg", "image/svg+xml"},
		{".map", "application/json"},
		{".qqqqqq", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mimeFromExt(tt.ext); got != tt.want {
			t.Errorf("mimeFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := fingerprint("console.css", []byte("body{}"))
	b := fingerprint("console.css", []byte("body{color:red}"))

	if a.Src != "console.css" {
		t.Errorf("Src = %q, want console.css", a.Src)
	}
	if len(a.Hash) != 8 {
		t.Errorf("hash length = %d, want 8", len(a.Hash))
	}
	if a.File != "console."+a.Hash+".css" {
		t.Errorf("File = %q, want hash before extension", a.File)
	}
	if a.File == b.File {
		t.Error("different content produced the same name")
	}
	if !containsHash(a.File) {
		t.Errorf("fingerprinted name %q not detected as hashed", a.File)
	}
}

func TestPath(t *testing.T) {
	got := Path("console.css")
	if !strings.HasPrefix(got, "/static/console.") || !strings.HasSuffix(got, ".css") {
		t.Errorf("Path(console.css) = %q", got)
	}
	if !containsHash(got) {
		t.Errorf("Path(console.css) = %q has no hash", got)
	}

	if got := Path("missing.js"); got != "/static/missing.js" {
		t.Errorf("Path(missing.js) = %q, want /static/missing.js", got)
	}
}

func TestFileServerHashedName(t *testing.T) {
	name := strings.TrimPrefix(Path("console.js"), "/static/")

	rec := httptest.NewRecorder()
	FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+name, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Cache-Control = %q, want immutable", cc)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/javascript" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "EventSource") {
		t.Error("served body is not the console script")
	}
}

func TestFileServerPlainName(t *testing.T) {
	rec := httptest.NewRecorder()
	FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}
}

func TestFileServerUnknownHash(t *testing.T) {
	rec := httptest.NewRecorder()
	FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console.deadbeef.css", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
