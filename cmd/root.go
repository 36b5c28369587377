package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"synth-pump/internal/catalog"
	"synth-pump/internal/cwlog"
	"synth-pump/internal/pipeline"
	"synth-pump/internal/source"
	"synth-pump/internal/synth"
)

var (
	cfgFile string
	seed    int64
)

var RootCmd = &cobra.Command{
	Use:   "synth-pump <region> <database> <table> <log-group> <log-stream>",
	Short: "Generate a synthetic twin of a catalog table",
	Long: `
  ______   ___  _ _____ _   _   ____  _   _ __  __ ____
 / ___\ \ / / \ | |_   _| | | | |  _ \| | | |  \/  |  _ \
 \___ \\ V /|  \| | | | | |_| | | |_) | | | | |\/| | |_) |
  ___) || | | |\  | | | |  _  | |  __/| |_| | |  | |  __/
 |____/ |_| |_| \_| |_| |_| |_| |_|    \___/|_|  |_|_|

SYNTH PUMP - Synthetic Table Generator

Reads a table from the data catalog, trains a generative model on it and
writes a statistically similar synthetic table back, suffixed _synthetic.
Stage progress is streamed to the given CloudWatch log stream.
`,
	Args: cobra.ExactArgs(5),
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	region, database, table := args[0], args[1], args[2]
	logGroup, logStream := args[3], args[4]
	ctx := cmd.Context()

	zl, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	sender := cwlog.NewFromConfig(cfg, logGroup, logStream)
	if err := sender.EnsureStream(ctx); err != nil {
		return err
	}
	if err := sender.Send(ctx, "Setting up logging ..."); err != nil {
		return err
	}

	glueResolver := catalog.NewResolverFromConfig(cfg)

	var reader pipeline.TableReader
	var resolver pipeline.LocationResolver
	if driver := viper.GetString("source.driver"); driver != "" {
		// relational source mode: the table lives in a plain database and
		// the output location comes from config instead of the catalog
		src, err := source.Open(driver, viper.GetString("source.dsn"))
		if err != nil {
			return err
		}
		defer src.Close()
		reader = src
		resolver = staticLocation(viper.GetString("output.location"))
		logger.Infow("using relational source", "driver", driver)
	} else {
		reader = catalog.NewReaderFromConfig(cfg, glueResolver)
		resolver = glueResolver
	}

	modelSeed := seed
	if modelSeed == 0 {
		modelSeed = time.Now().UnixNano()
	}
	model := synth.New(modelSeed)

	uiprogress.Start()
	bar := uiprogress.AddBar(100).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return "Sampling: "
	})
	model.Progress = func() {
		bar.Incr()
	}
	defer uiprogress.Stop()

	p := &pipeline.Pipeline{
		Reader:    reader,
		Resolver:  resolver,
		Generator: model,
		Writer:    catalog.NewWriterFromConfig(cfg, glueResolver),
		Status:    sender.Send,
		Log:       logger,
	}
	return p.Run(ctx, database, table)
}

// staticLocation resolves every table to a subdirectory of one configured
// output location (relational source mode).
type staticLocation string

func (s staticLocation) TableLocation(_ context.Context, _, table string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("output.location is required when source.driver is set")
	}
	return strings.TrimRight(string(s), "/") + "/" + table, nil
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./synth-pump.yaml)")
	RootCmd.Flags().Int64Var(&seed, "seed", 0, "Model seed (0 seeds from the clock)")

	viper.SetDefault("source.driver", "")
	viper.SetDefault("source.dsn", "")
	viper.SetDefault("output.location", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// executable directory first, then the current directory
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("synth-pump")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
