package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DENTKAO_MODE", "DENTKAO_ADDR", "DENTKAO_PORT", "DENTKAO_DATA",
		"DENTKAO_DSN", "DENTKAO_DRIVER", "DENTKAO_INSTANCE_URL",
		"DENTKAO_CORPUS_FILE", "DENTKAO_CORE_TOPIC_FILE", "DENTKAO_FIGURES_DIR",
		"DENTKAO_TIMEZONE", "DENTKAO_SECRET",
	} {
		os.Unsetenv(key)
	}
}

// TestProfileDefaults 測試設定檔預設值
func TestProfileDefaults(t *testing.T) {
	clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	if p.Timezone != "Asia/Taipei" {
		t.Errorf("Timezone default should be Asia/Taipei, got %q", p.Timezone)
	}
	if p.Mode != "" {
		t.Errorf("Mode should stay empty before Validate, got %q", p.Mode)
	}
}

// TestProfileFromEnv 測試環境變數讀取
func TestProfileFromEnv(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("DENTKAO_MODE", "dev")
	t.Setenv("DENTKAO_DRIVER", "postgres")
	t.Setenv("DENTKAO_PORT", "28081")
	t.Setenv("DENTKAO_TIMEZONE", "UTC")

	p := &Profile{}
	p.FromEnv()

	if p.Mode != "dev" {
		t.Errorf("Mode = %q, want dev", p.Mode)
	}
	if p.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", p.Driver)
	}
	if p.Port != 28081 {
		t.Errorf("Port = %d, want 28081", p.Port)
	}
	if p.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", p.Timezone)
	}
}

// TestProfileFlagsWinOverEnv 測試旗標優先於環境變數
func TestProfileFlagsWinOverEnv(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("DENTKAO_MODE", "prod")

	p := &Profile{Mode: "dev"}
	p.FromEnv()

	if p.Mode != "dev" {
		t.Errorf("flag value should win over env, got %q", p.Mode)
	}
}

// TestProfileValidate 測試 Validate 的預設推導
func TestProfileValidate(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()

	p := &Profile{
		Mode:     "dev",
		Data:     dir,
		Driver:   "sqlite",
		Timezone: "Asia/Taipei",
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if p.DSN != filepath.Join(dir, "dentkao_dev.db") {
		t.Errorf("DSN = %q, want derived sqlite path", p.DSN)
	}
	if p.CorpusFile != filepath.Join(dir, "corpus.json") {
		t.Errorf("CorpusFile = %q, want derived corpus path", p.CorpusFile)
	}
	if p.FiguresDir != filepath.Join(dir, "figures") {
		t.Errorf("FiguresDir = %q, want derived figures path", p.FiguresDir)
	}
}

// TestProfileValidateBadTimezone 測試無效時區
func TestProfileValidateBadTimezone(t *testing.T) {
	clearEnvVars(t)
	p := &Profile{
		Mode:     "dev",
		Data:     t.TempDir(),
		Driver:   "sqlite",
		Timezone: "Not/AZone",
	}
	if err := p.Validate(); err == nil {
		t.Error("Validate() should reject an invalid timezone")
	}
}

// TestProfileValidateNormalizesMode 測試模式正規化
func TestProfileValidateNormalizesMode(t *testing.T) {
	clearEnvVars(t)
	p := &Profile{
		Mode:     "something-else",
		Data:     t.TempDir(),
		Driver:   "sqlite",
		Timezone: "Asia/Taipei",
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.Mode != "demo" {
		t.Errorf("unknown mode should normalize to demo, got %q", p.Mode)
	}
}
