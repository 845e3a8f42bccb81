package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/internal/version"
	"github.com/dentkao/dentkao/server"
	"github.com/dentkao/dentkao/server/corpus"
	"github.com/dentkao/dentkao/server/progress"
	"github.com/dentkao/dentkao/server/queryengine"
	"github.com/dentkao/dentkao/server/service/study"
	"github.com/dentkao/dentkao/server/timezone"
	"github.com/dentkao/dentkao/store"
	"github.com/dentkao/dentkao/store/db"
)

const greetingBanner = `
dentkao - 牙醫國考題庫伺服器
`

var rootCmd = &cobra.Command{
	Use:   "dentkao",
	Short: "A self-hosted study server over national-exam past questions",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:          viper.GetString("mode"),
			Addr:          viper.GetString("addr"),
			Port:          viper.GetInt("port"),
			Data:          viper.GetString("data"),
			Driver:        viper.GetString("driver"),
			DSN:           viper.GetString("dsn"),
			InstanceURL:   viper.GetString("instance-url"),
			CorpusFile:    viper.GetString("corpus-file"),
			CoreTopicFile: viper.GetString("core-topic-file"),
			FiguresDir:    viper.GetString("figures-dir"),
			Timezone:      viper.GetString("timezone"),
			Version:       version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid profile", slog.String("error", err.Error()))
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := run(ctx, cancel, instanceProfile); err != nil {
			slog.Error("failed to run server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	},
}

func run(ctx context.Context, cancel context.CancelFunc, instanceProfile *profile.Profile) error {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	corpusInstance, err := corpus.Load(instanceProfile.CorpusFile)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	slog.Info("corpus loaded",
		slog.Int("questions", corpusInstance.Len()),
		slog.Int("yearMin", corpusInstance.Metadata().YearRange.Min),
		slog.Int("yearMax", corpusInstance.Metadata().YearRange.Max))

	engine, err := buildEngine(instanceProfile, corpusInstance)
	if err != nil {
		return fmt.Errorf("failed to configure query engine: %w", err)
	}

	loc := timezone.MustParse(instanceProfile.Timezone)
	state := &progress.State{}
	if found, err := storeInstance.GetStateJSON(ctx, store.StateKeyProgress, state); err != nil || !found {
		// Missing or corrupt progress falls back to the zero state.
		if err != nil {
			slog.Warn("failed to load progress state, starting fresh", slog.String("error", err.Error()))
		}
		state = progress.NewState()
	}
	tracker := progress.NewTracker(state, loc)

	studyService := study.NewService(ctx, storeInstance, corpusInstance, engine, tracker)

	s, err := server.NewServer(ctx, instanceProfile, storeInstance, studyService)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
		s.Shutdown(ctx)
		cancel()
	}()

	printGreetings(instanceProfile)
	return s.Start(ctx)
}

// buildEngine derives the engine config from the corpus metadata, so the
// partial-identifier year expansion always follows the loaded dataset, and
// applies the optional core-topic table override.
func buildEngine(instanceProfile *profile.Profile, corpusInstance *corpus.Corpus) (*queryengine.Engine, error) {
	config := queryengine.DefaultConfig()
	if yearRange := corpusInstance.Metadata().YearRange; yearRange.Min > 0 {
		config.Data.YearMin = yearRange.Min
		config.Data.YearMax = yearRange.Max
	}
	if instanceProfile.CoreTopicFile != "" {
		rules, err := queryengine.LoadCoreTopicRules(instanceProfile.CoreTopicFile)
		if err != nil {
			return nil, err
		}
		config.CoreTopic = rules
	}
	return queryengine.NewEngineWithConfig(config)
}

func printGreetings(p *profile.Profile) {
	fmt.Print(greetingBanner)
	fmt.Printf("Version %s has been started on port %d\n", p.Version, p.Port)
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your dentkao instance")
	rootCmd.PersistentFlags().String("corpus-file", "", "path to the consolidated question dataset")
	rootCmd.PersistentFlags().String("core-topic-file", "", "path to a core-topic range table overriding the built-in one")
	rootCmd.PersistentFlags().String("figures-dir", "", "directory holding question figure images")
	rootCmd.PersistentFlags().String("timezone", "Asia/Taipei", "IANA timezone for study-day bucketing")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url", "corpus-file", "core-topic-file", "figures-dir", "timezone"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("dentkao")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
