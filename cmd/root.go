package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskwell/taskwell/board"
	"github.com/taskwell/taskwell/internal/config"
	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/storage"
	"github.com/taskwell/taskwell/store"
)

const (
	configName = ".taskwell"
	envPrefix  = "TASKWELL"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables debug logging.
	verbose bool
	// version is the application version.
	version = "1.0.0"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taskwell",
	Short: "taskwell is a kanban-style task board for your terminal.",
	Long: `taskwell keeps a three-column task board (Backlog, In Progress, Done)
in durable per-user storage. Add tasks, move them across columns, reorder
them, and browse the board statically or interactively.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.taskwell.yaml or ./.taskwell.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads the config file and environment.
func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

func newLogger(cfg config.AppConfig) logger.Logger {
	level := logger.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logger.DebugLevel
	}
	return logger.New(os.Stderr, level)
}

// getService builds the storage backend, runs the schema migration, and
// loads the board engine. The returned closer releases the backend.
func getService() (*board.Service, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg)

	var kv storage.KV
	switch cfg.Data.Backend {
	case config.BackendSQLite:
		kv, err = storage.NewSQLiteKV(cfg.Data.SQLitePath(), cfg.Data.CapacityBytes)
	default:
		kv, err = storage.NewFileKV(afero.NewOsFs(), cfg.Data.Dir, cfg.Data.CapacityBytes)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s backend: %w", cfg.Data.Backend, err)
	}
	closer := func() { _ = kv.Close() }

	if err := store.NewMigrator(kv, log).Run(); err != nil {
		closer()
		return nil, nil, fmt.Errorf("schema migration failed: %w", err)
	}

	svc, err := board.NewService(store.NewAdapter(kv, log), log)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return svc, closer, nil
}

// dataFilePath returns the path of the file holding the task collection,
// for the watcher used by long-running views. Empty for non-file backends.
func dataFilePath() string {
	cfg, err := config.Load(viper.GetViper())
	if err != nil || cfg.Data.Backend != config.BackendFile {
		return ""
	}
	kv, err := storage.NewFileKV(afero.NewOsFs(), cfg.Data.Dir, cfg.Data.CapacityBytes)
	if err != nil {
		return ""
	}
	defer func() { _ = kv.Close() }()
	return kv.Path(store.TasksKey)
}
