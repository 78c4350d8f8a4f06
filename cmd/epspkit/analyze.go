package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epsplab/epspkit/fileio"
	"github.com/epsplab/epspkit/pipeline"
	"github.com/epsplab/epspkit/recording"
)

// runConfig is the YAML configuration surface of the analyze command.
type runConfig struct {
	Inputs      []string  `mapstructure:"inputs"`
	Output      string    `mapstructure:"output"`
	Intensities []float64 `mapstructure:"stim_intensities"`
	Repetitions int       `mapstructure:"repetitions"`
	MaxParallel int       `mapstructure:"max_parallel"`

	Pipeline pipeline.Config `mapstructure:",squash"`
}

func analyzeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the analysis pipeline over one or more recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			return analyze(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "epspkit.yaml", "pipeline configuration file")

	return cmd
}

func loadConfig(path string) (*runConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("repetitions", 3)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg runConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("config %s: inputs is required", path)
	}

	if len(cfg.Intensities) == 0 {
		return nil, fmt.Errorf("config %s: stim_intensities is required", path)
	}

	return &cfg, nil
}

func analyze(cfg *runConfig) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	contexts := make([]*recording.Context, 0, len(cfg.Inputs))

	for _, path := range cfg.Inputs {
		ctx, err := fileio.LoadCSVFile(path, cfg.Intensities, cfg.Repetitions)
		if err != nil {
			return err
		}

		log.Info("loaded recording",
			"path", path,
			"sweeps", len(ctx.Sweeps),
			"sample_rate_hz", ctx.SampleRate)

		contexts = append(contexts, ctx)
	}

	if err := pipeline.RunAll(contexts, cfg.Pipeline, cfg.MaxParallel); err != nil {
		return err
	}

	if cfg.Output != "" && (len(contexts) > 1 || filepath.Ext(cfg.Output) == "") {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return err
		}
	}

	for _, ctx := range contexts {
		for name, result := range ctx.Results() {
			log.Info("feature computed",
				"recording", ctx.Meta["input_path"],
				"feature", name,
				"rows", result.Len())
		}

		if cfg.Output == "" {
			continue
		}

		out := outputPath(cfg.Output, ctx.Meta["input_path"], len(contexts))
		if err := fileio.SaveJSONFile(out, ctx); err != nil {
			return err
		}

		log.Info("results written", "path", out)
	}

	return nil
}

// outputPath maps a configured output location to one file per
// recording: a path with an extension is used as-is for single-recording
// runs, anything else is treated as a directory.
func outputPath(output, inputPath string, total int) string {
	if total == 1 && filepath.Ext(output) != "" {
		return output
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if stem == "" {
		stem = "recording"
	}

	return filepath.Join(output, stem+"_results.json")
}
