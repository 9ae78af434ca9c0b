package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("STORYSHOT_TEXT_PROVIDER", "gemini")
	t.Setenv("STORYSHOT_SERVER_PORT", "9999")
	t.Setenv("STORYSHOT_STORAGE_REHOST_REMOTE", "true")
	t.Setenv("STORYSHOT_VOLCENGINE_ACCESS_KEY_ID", "ak")

	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if c.App.TextProvider != "gemini" {
		t.Fatalf("TextProvider = %q, want gemini", c.App.TextProvider)
	}
	if c.Server.Port != 9999 {
		t.Fatalf("Port = %d, want 9999", c.Server.Port)
	}
	if !c.Storage.RehostRemote {
		t.Fatalf("RehostRemote = false, want true")
	}
	if c.Volcengine.AccessKeyId != "ak" {
		t.Fatalf("AccessKeyId = %q", c.Volcengine.AccessKeyId)
	}
	if c.Volcengine.Region != "cn-north-1" {
		t.Fatalf("default region lost: %q", c.Volcengine.Region)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
    image_provider = "volcengine"
[database]
    driver = "mysql"
    dsn = "user:pass@tcp(127.0.0.1:3306)/storyshot"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if c.App.ImageProvider != "volcengine" || c.Database.Driver != "mysql" {
		t.Fatalf("unexpected config: %+v", c.App)
	}
	if c.App.TextProvider != "openai" {
		t.Fatalf("default text provider lost: %q", c.App.TextProvider)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown text provider", func(c *Config) { c.App.TextProvider = "claude" }, true},
		{"unknown video provider", func(c *Config) { c.App.VideoProvider = "sora" }, true},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"oss without bucket", func(c *Config) { c.Storage.Provider = "oss" }, true},
		{"zero poll interval", func(c *Config) { c.Video.PollIntervalSeconds = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			err := validateConfig(&c)
			if (err != nil) != tc.wantErr {
				t.Fatalf("validateConfig() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
