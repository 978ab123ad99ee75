/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acronis/go-appkit/config"
	"github.com/acronis/go-appkit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/acronis/go-dbupgrade"
	"github.com/acronis/go-dbupgrade/csvimport"
	"github.com/acronis/go-dbupgrade/dialect"
	"github.com/acronis/go-dbupgrade/upgrader"
)

const envVarsPrefix = "DBUPGRADE"

type rootFlags struct {
	configPath        string
	scriptsFolderPath string
	fromVersion       string
	placeholders      string
	dialect           string
	dsn               string
	logLevel          string
	metricsTextfile   string
}

// appConfig is the configuration of the command.
type appConfig struct {
	DB      *dbupgrade.Config
	Upgrade *upgrader.Config
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:           "dbupgrade",
		Short:         "Apply versioned SQL scripts to a database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			return runUpgrade(cmd, cfg, &flags, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML or JSON configuration file")
	f.StringVar(&flags.scriptsFolderPath, "scriptsFolderPath", upgrader.DefaultScriptsFolderPath, "path to the scripts repository")
	f.StringVar(&flags.fromVersion, "fromVersion", "", "version to start from, earlier versions are skipped")
	f.StringVar(&flags.placeholders, "placeholders", "", `placeholders in the "key1=value1;key2=value2" form`)
	f.StringVar(&flags.dialect, "dialect", "", "database dialect (mssql, mysql, firebird, postgres, pgx, sqlite3)")
	f.StringVar(&flags.dsn, "dsn", "", "connection string, overrides dialect-specific connection parameters")
	f.StringVar(&flags.logLevel, "logLevel", string(log.LevelInfo), "log level (error, warn, info, debug)")
	f.StringVar(&flags.metricsTextfile, "metricsTextfile", "", "write run metrics in the Prometheus text format to this file")

	cmd.AddCommand(newGenerateCmd(stdout))
	return cmd
}

func loadConfig(cmd *cobra.Command, flags *rootFlags) (*appConfig, error) {
	cfg := &appConfig{
		DB:      dbupgrade.NewDefaultConfig(dbupgrade.AllDialects()),
		Upgrade: upgrader.NewConfig(),
	}

	// Without a config file the connection is described by flags only, so the db section is not loaded.
	data, dataType := []byte("{}"), config.DataTypeJSON
	cfgs := []config.Config{cfg.Upgrade}
	if flags.configPath != "" {
		var err error
		if data, err = os.ReadFile(flags.configPath); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		dataType = configDataType(flags.configPath)
		cfgs = append(cfgs, cfg.DB)
	}
	for _, c := range cfgs {
		if err := config.NewDefaultLoader(envVarsPrefix).LoadFromReader(bytes.NewReader(data), dataType, c); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	switch log.Level(flags.logLevel) {
	case log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug:
	default:
		return nil, fmt.Errorf("unknown log level %q", flags.logLevel)
	}

	f := cmd.Flags()
	if f.Changed("scriptsFolderPath") || cfg.Upgrade.ScriptsFolderPath == "" {
		cfg.Upgrade.ScriptsFolderPath = flags.scriptsFolderPath
	}
	if f.Changed("fromVersion") {
		cfg.Upgrade.FromVersion = flags.fromVersion
	}
	if f.Changed("placeholders") {
		cfg.Upgrade.Placeholders = flags.placeholders
	}
	if f.Changed("dialect") {
		cfg.DB.Dialect = dbupgrade.Dialect(flags.dialect)
	}
	if f.Changed("dsn") {
		cfg.DB.DSN = flags.dsn
	}
	return cfg, nil
}

func configDataType(path string) config.DataType {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return config.DataTypeJSON
	}
	return config.DataTypeYAML
}

func runUpgrade(cmd *cobra.Command, cfg *appConfig, flags *rootFlags, stdout io.Writer) error {
	logger, loggerClose := log.NewLogger(&log.Config{Output: log.OutputStderr, Level: log.Level(flags.logLevel)})
	defer loggerClose()

	root := cfg.Upgrade.ScriptsFolderPath
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return reportStatus(stdout, &statusError{
			status: upgrader.StatusNonExistingScriptsFolder,
			err:    fmt.Errorf("%s: %w", root, os.ErrNotExist),
		})
	}
	if _, err := dialect.Lookup(cfg.DB.Dialect); err != nil {
		return reportStatus(stdout, &statusError{status: upgrader.StatusUnknownDatabase, err: err})
	}

	placeholders, err := cfg.Upgrade.PlaceholderMap()
	if err != nil {
		return reportStatus(stdout, &statusError{status: upgrader.StatusError, err: err})
	}

	db, err := dbupgrade.Open(cfg.DB, true)
	if err != nil {
		return reportStatus(stdout, &statusError{status: upgrader.StatusError, err: err})
	}
	defer db.Close() // nolint: errcheck

	metrics := upgrader.NewPrometheusMetrics()
	opts := append(cfg.Upgrade.Options(),
		upgrader.WithContentTransform(csvimport.ScriptTransformFor(cfg.DB.Dialect)),
		upgrader.WithMetrics(metrics),
	)
	u, err := upgrader.New(db, cfg.DB.Dialect, logger, opts...)
	if err != nil {
		return reportStatus(stdout, &statusError{status: upgrader.StatusOf(err), err: err})
	}

	status, runErr := u.Run(cmd.Context(), root, cfg.Upgrade.FromVersion, placeholders)

	if flags.metricsTextfile != "" {
		if err = writeMetrics(flags.metricsTextfile, metrics); err != nil {
			logger.Error("failed to write metrics", log.String("path", flags.metricsTextfile), log.Error(err))
		}
	}

	if runErr != nil {
		return reportStatus(stdout, &statusError{status: status, err: runErr})
	}
	return reportStatus(stdout, nil)
}

func writeMetrics(path string, metrics *upgrader.PrometheusMetrics) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.ScriptsTotal); err != nil {
		return err
	}
	if err := reg.Register(metrics.StatementDuration); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}

// reportStatus prints the human-readable outcome of the run and passes err through.
func reportStatus(w io.Writer, err *statusError) error {
	if err == nil {
		fmt.Fprintln(w, statusMessages[upgrader.StatusSuccess])
		return nil
	}
	fmt.Fprintln(w, statusMessages[err.status])
	return err
}
