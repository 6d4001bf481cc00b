package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if c.Assets.Cover != "cover.png" || c.Icons.Parallelism != 4 || c.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	data := `
assets:
  base_dir: /srv/assets
  cover: https://cdn.example.com/cover.png
  http_timeout: 5s
icons:
  parallelism: 2
  refs:
    disc:
      D: icons/disc-d.svg
document:
  title: Career Report
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "reportkit.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Assets.BaseDir != "/srv/assets" || c.Assets.HTTPTimeout != 5*time.Second {
		t.Fatalf("assets = %+v", c.Assets)
	}
	if got := c.IconRef("disc", "D"); got != "icons/disc-d.svg" {
		t.Fatalf("icon ref = %q", got)
	}
	if got := c.IconRef("mi", "LIN"); got != "" {
		t.Fatalf("missing icon ref = %q", got)
	}
	if c.Document.Title != "Career Report" || c.Document.Producer != "reportkit" {
		t.Fatalf("document = %+v", c.Document)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("server default not applied: %+v", c.Server)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"bad yaml":  "assets: [",
		"bad level": "log:\n  level: loud\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(in)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
