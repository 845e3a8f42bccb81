package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where dentkao stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your dentkao instance.
	InstanceURL string

	// CorpusFile is the path to the consolidated question dataset (JSON).
	CorpusFile string
	// CoreTopicFile optionally overrides the built-in core-topic range table (JSON).
	CoreTopicFile string
	// FiguresDir is the directory holding question figure images.
	FiguresDir string
	// Timezone is the IANA timezone used for study-day bucketing.
	Timezone string
	// Secret signs access tokens. Generated and persisted on first start when empty.
	Secret string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from DENTKAO_* environment variables.
// Values already set on the profile (e.g. from flags) win over the environment.
func (p *Profile) FromEnv() {
	setIfEmpty := func(field *string, key string) {
		if *field == "" {
			*field = os.Getenv(key)
		}
	}

	setIfEmpty(&p.Mode, "DENTKAO_MODE")
	setIfEmpty(&p.Addr, "DENTKAO_ADDR")
	setIfEmpty(&p.Data, "DENTKAO_DATA")
	setIfEmpty(&p.DSN, "DENTKAO_DSN")
	setIfEmpty(&p.Driver, "DENTKAO_DRIVER")
	setIfEmpty(&p.InstanceURL, "DENTKAO_INSTANCE_URL")
	setIfEmpty(&p.CorpusFile, "DENTKAO_CORPUS_FILE")
	setIfEmpty(&p.CoreTopicFile, "DENTKAO_CORE_TOPIC_FILE")
	setIfEmpty(&p.FiguresDir, "DENTKAO_FIGURES_DIR")
	setIfEmpty(&p.Secret, "DENTKAO_SECRET")

	if p.Timezone == "" {
		p.Timezone = getEnvOrDefault("DENTKAO_TIMEZONE", "Asia/Taipei")
	}
	if p.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("DENTKAO_PORT")); err == nil {
			p.Port = port
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "dentkao")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/dentkao"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("dentkao_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.CorpusFile == "" {
		p.CorpusFile = filepath.Join(dataDir, "corpus.json")
	}
	if p.FiguresDir == "" {
		p.FiguresDir = filepath.Join(dataDir, "figures")
	}

	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}

	return nil
}
