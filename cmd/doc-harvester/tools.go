package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

func newCleanCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean-csv <input> <output>",
		Short:   "Drop the leading methodology row from a CSV export",
		Example: `  doc-harvester clean-csv "AfDB Final Corpus - Sheet1.csv" afdb_clean.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kept, err := utils.DropLeadingRows(args[0], args[1], 1)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("Error: %v", err)}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cleaned CSV saved to: %s\n", args[1])
			fmt.Fprintf(out, "Removed 1 row, kept %d rows\n", kept)
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := loadConfig(cmd, nil)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("Error: %v", err)}
			}
			if code := doValidate(appCfg, cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

// doValidate validates appCfg and writes the outcome to the provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(appCfg *config.AppConfig, stdout, stderr io.Writer) int {
	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	// The sections input is only required when running that command
	if appCfg.Sections.Input != "" {
		sectionWarnings, err := appCfg.Sections.Validate()
		for _, w := range sectionWarnings {
			fmt.Fprintf(stdout, "WARN: [sections] %s\n", w)
		}
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: [sections] %v\n", err)
			return 1
		}
	}

	if appCfg.RulesFile != "" {
		if _, err := rules.LoadFile(appCfg.RulesFile); err != nil {
			fmt.Fprintf(stderr, "ERROR: [rules] %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "OK: rules file '%s'\n", appCfg.RulesFile)
	}

	data, err := yaml.Marshal(appCfg)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: rendering configuration: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "\nEffective configuration:\n%s", data)
	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}
