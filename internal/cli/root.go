package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/llm"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/observability"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "v0.3.0"

var (
	cfgFile string
	verbose bool

	// configErr holds a config file error found by initConfig; commands
	// report it when they load the configuration
	configErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clarifai",
	Short: "ClarifAI - fact-checking dashboard",
	Long: `ClarifAI renders the output of the ClarifAI fact-checking API: source
credibility, live claim verdicts, trending topics, analytics and an AI
anchor that turns verified claims into short video briefings.

ClarifAI does not verify anything itself. Every verdict, score and
relationship shown comes from the API; when the API is unreachable the
dashboard says so and falls back to cached or demo data.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clarifai %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clarifai/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("api-url", model.DefaultAPIURL, "ClarifAI API base URL")
	flags.String("mode", model.ModeAuto, "data source: auto, api or demo")

	// Bind flags to viper
	_ = viper.BindPFlag("api.url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("api.mode", flags.Lookup("mode"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	configErr = setupViper(viper.GetViper(), cfgFile)
	if configErr == nil && verbose && viper.ConfigFileUsed() != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setupViper layers defaults, CLARIFAI_* environment variables and the config
// file on v. A missing default config file is not an error; a missing
// explicit one is.
func setupViper(v *viper.Viper, file string) error {
	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		return err
	}

	// CLARIFAI_API_URL, CLARIFAI_BROADCAST_URL, CLARIFAI_SERVER_ADDR, ...
	v.SetEnvPrefix("CLARIFAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "CLARIFAI_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("bind api key: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(filepath.Join(home, ".clarifai"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// registerDefaults installs every key of cfg as a viper default so that
// environment variables are seen by Unmarshal
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves the effective configuration
func loadConfig() (*model.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Server.Robots == "" {
		cfg.Server.Robots = model.DefaultRobots
	}
	return cfg, nil
}

// newLogger installs the process logger; --verbose forces debug level
func newLogger(cfg *model.Config) *zap.Logger {
	logCfg := cfg.Log
	if verbose {
		logCfg.Level = "debug"
	}
	return observability.Init(logCfg)
}

// newStore builds the data store. Demo mode never touches the network.
func newStore(cfg *model.Config, logger *zap.Logger) *backend.Store {
	var client *backend.Client
	if cfg.API.Mode != model.ModeDemo {
		client = backend.NewClient(cfg, logger)
	}
	return backend.NewStore(client, cfg.API, logger)
}

// newScriptWriter builds the anchor script writer. The "api" provider
// writes through the store's API client.
func newScriptWriter(cfg *model.Config, store *backend.Store, logger *zap.Logger) (*llm.ScriptWriter, error) {
	llmCfg := llm.ConfigFromModel(cfg.LLM)
	if c := store.Client(); c != nil {
		llmCfg.API = c
	}
	w, err := llm.NewScriptWriter(llmCfg, logger.With(zap.String("component", "llm")))
	if err != nil {
		return nil, fmt.Errorf("script writer: %w", err)
	}
	return w, nil
}
