package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/store"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestFileCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	c := New(os.Stderr, LogInfo)

	got, err := c.fileCacheDir("/srv/cache")
	if err != nil || got != "/srv/cache" {
		t.Errorf("fileCacheDir(configured) = %q, %v", got, err)
	}
	got, err = c.fileCacheDir("")
	if err != nil || got != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("fileCacheDir(\"\") = %q, %v", got, err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,json", []string{"svg", "pdf", "json"}},
		{"spaces trimmed", "svg, json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.svg")
	if err := writeOutput([]byte("<svg/>"), path); err != nil {
		t.Fatalf("writeOutput() error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<svg/>" {
		t.Errorf("file content = %q", got)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := New(os.Stderr, LogInfo)
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		noCache bool
		check   func(cache.Cache) bool
		wantErr bool
	}{
		{"no-cache flag wins", config.CacheConfig{Backend: cacheFile, Dir: dir}, true, isType[cache.NullCache], false},
		{"none", config.CacheConfig{Backend: cacheNone}, false, isType[cache.NullCache], false},
		{"memory", config.CacheConfig{Backend: cacheMemory}, false, isType[*cache.MemoryCache], false},
		{"file", config.CacheConfig{Backend: cacheFile, Dir: dir}, false, isType[*cache.FileCache], false},
		{"empty is file", config.CacheConfig{Dir: dir}, false, isType[*cache.FileCache], false},
		{"unknown", config.CacheConfig{Backend: "memcached"}, false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.newCache(ctx, tt.cfg, tt.noCache)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newCache() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(got) {
				t.Errorf("newCache() = %T", got)
			}
		})
	}
}

func isType[T any](v cache.Cache) bool {
	_, ok := v.(T)
	return ok
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	st, err := newStore(ctx, config.StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("newStore(memory) error: %v", err)
	}
	if _, ok := st.(*store.MemoryStore); !ok {
		t.Errorf("newStore(memory) = %T", st)
	}

	st, err = newStore(ctx, config.StoreConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("newStore(file) error: %v", err)
	}
	if _, ok := st.(*store.FileStore); !ok {
		t.Errorf("newStore(file) = %T", st)
	}

	if _, err := newStore(ctx, config.StoreConfig{Backend: "sqlite"}); err == nil {
		t.Error("newStore(sqlite) should fail")
	}
}

func TestNewRunnerTTL(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	cfg := config.Default().Cache
	cfg.Backend = cacheMemory

	r, err := c.newRunner(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newRunner() error: %v", err)
	}
	defer r.Close()
	if cfg.TTL.Duration > 0 && r.TTL != cfg.TTL.Duration {
		t.Errorf("runner TTL = %v, want %v", r.TTL, cfg.TTL.Duration)
	}
}
