package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
)

const version = "1.0.0"

// exitError carries a process exit code out of a command
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.msg != "" {
				fmt.Fprintln(stderr, exitErr.msg)
			}
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "doc-harvester",
		Short: "AfDB document harvester and MapAfrica section extractor",
		Long: `doc-harvester crawls the AfDB document listings, keeps the records of one sector
and resolves each record's PDF link into a CSV manifest. The sections command
extracts project sections from MapAfrica for a list of project identifiers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to YAML config file (optional)")
	pf.String("loglevel", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Log file path (harvest defaults to <out-dir>/harvester.log)")
	pf.String("user-agent", "", "Custom User-Agent header")
	pf.String("rules", "", "YAML file overriding the built-in selector rules")
	pf.Bool("respect-robots", false, "Skip URLs disallowed by robots.txt")
	pf.Duration("timeout", 0, "Per-request timeout (default 30s)")

	root.AddCommand(
		newHarvestCmd(),
		newSectionsCmd(),
		newCleanCSVCmd(),
		newValidateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "doc-harvester %s\n", version)
			},
		},
	)
	return root
}

// globalFlagKeys maps persistent flags to their config keys
var globalFlagKeys = map[string]string{
	"loglevel":       "log_level",
	"log-file":       "log_file",
	"user-agent":     "user_agent",
	"rules":          "rules_file",
	"respect-robots": "respect_robots",
	"timeout":        "http_client_settings.timeout",
}

// loadConfig merges defaults, the config file, HARVESTER_* environment and changed flags.
// Only flags the user actually set override lower layers.
func loadConfig(cmd *cobra.Command, commandKeys map[string]string) (*config.AppConfig, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags(), globalFlagKeys); err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd.Flags(), commandKeys); err != nil {
		return nil, err
	}
	configPath, _ := cmd.Flags().GetString("config")
	return config.Load(v, configPath)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
