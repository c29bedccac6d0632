package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
app:
  name: canchaya-slots
  environment: development
  port: 8080
backend:
  base_url: https://api.canchaya.test
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Booking.UTCOffset != "-03:00" {
		t.Errorf("utc offset default: %s", cfg.Booking.UTCOffset)
	}
	if cfg.Backend.TimeoutSeconds != 10 {
		t.Errorf("timeout default: %d", cfg.Backend.TimeoutSeconds)
	}
	if cfg.TemplateSource != "remote" {
		t.Errorf("template source default: %s", cfg.TemplateSource)
	}
	if cfg.Sync.CronExpr != "0 */6 * * *" {
		t.Errorf("sync cron default: %s", cfg.Sync.CronExpr)
	}
	if cfg.BackendTimeout() != 10*time.Second {
		t.Errorf("backend timeout: %v", cfg.BackendTimeout())
	}
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_API_KEY", "secret-key")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.APIKey != "secret-key" {
		t.Errorf("api key: %s", cfg.Backend.APIKey)
	}
}

func TestLoad_LocalTemplateSource(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
database:
  driver: sqlite
  filename: canchaya.db
sync:
  enabled: true
template_source: local
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TemplateSource != "local" {
		t.Errorf("template source: %s", cfg.TemplateSource)
	}
	if !cfg.Sync.Enabled {
		t.Errorf("sync should be enabled")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing app name",
			content: `
app:
  port: 8080
backend:
  base_url: https://api.canchaya.test
`,
			wantErr: "app name is required",
		},
		{
			name: "missing backend url",
			content: `
app:
  name: canchaya-slots
  port: 8080
`,
			wantErr: "base_url is required",
		},
		{
			name:    "bad utc offset",
			content: minimalConfig + "booking:\n  utc_offset: \"eastern\"\n",
			wantErr: "invalid utc_offset",
		},
		{
			name:    "unknown template source",
			content: minimalConfig + "template_source: redis\n",
			wantErr: "unsupported template source",
		},
		{
			name:    "local source without sqlite",
			content: minimalConfig + "template_source: local\n",
			wantErr: "sqlite database driver",
		},
		{
			name:    "sync without local source",
			content: minimalConfig + "sync:\n  enabled: true\n",
			wantErr: "requires the local template source",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestRegion(t *testing.T) {
	cfg := &Config{}
	cfg.Booking.UTCOffset = "-03:00"

	region, err := cfg.Region()
	if err != nil {
		t.Fatalf("region: %v", err)
	}

	utc := time.Date(2025, 10, 21, 21, 0, 0, 0, time.UTC)
	if got := utc.In(region).Format("15:04"); got != "18:00" {
		t.Errorf("local time: %s", got)
	}

	cfg.Booking.UTCOffset = "+05:30"
	region, err = cfg.Region()
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	if got := utc.In(region).Format("15:04"); got != "02:30" {
		t.Errorf("local time: %s", got)
	}
}
