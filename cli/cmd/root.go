package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"medledger/core/audit"
	"medledger/core/chain"
	"medledger/core/config"
	"medledger/core/logging"
	"medledger/core/storage"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
	ledger  *chain.Ledger
}

// NewRootCommand builds the medledger command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: logrus.New()}

	rootCmd := &cobra.Command{
		Use:   "medledger",
		Short: "Tamper-evident medical records ledger",
		Long: "A command-line tool for appending treatment records to a hash-chained ledger,\n" +
			"verifying its integrity and serving it over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	pf.String("data-dir", "", "directory holding the chain, backup and audit log")
	pf.String("log-level", "", "log level: panic|fatal|error|warn|info|debug|trace")
	pf.String("server", "", "base URL of a running server for status queries")

	rootCmd.AddCommand(
		newAddCmd(a),
		newGetCmd(a),
		newPatientCmd(a),
		newDoctorCmd(a),
		newRecentCmd(a),
		newVerifyCmd(a),
		newTamperCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
		newRollbackCmd(a),
		newDemoCmd(a),
		newServeCmd(a),
		newStatusCmd(a),
		newHealthCmd(a),
		newLivenessCmd(a),
		newReadinessCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	bindFlag(v, cmd, "data.dir", "data-dir")
	bindFlag(v, cmd, "log.level", "log-level")
	bindFlag(v, cmd, "cli.server_url", "server")

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := logging.Init(a.log, cfg); err != nil {
		return err
	}
	a.cfg = cfg

	store := storage.NewStorage(cfg.ChainPath(), cfg.BackupPath(), a.log)
	a.ledger = chain.NewLedger(store, audit.NewFileAuditLogger(cfg.AuditLogPath()), a.log, cfg.Policy())
	return nil
}

// bindFlag lets an explicitly set flag override config file and env values.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, name string) {
	if f := cmd.Flags().Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
