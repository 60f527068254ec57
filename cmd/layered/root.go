package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/layeredcfg/layered"
)

// NewRootCommand builds the layered CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "layered",
		Short: "Merge layered configuration files",
		Long: `layered folds multiple configuration files (TOML, JSON/JSONC, YAML)
into one tree, with later files overriding earlier ones leaf by leaf.

In advanced mode, keys may carry symbolic merge directives of the form
[MODIFIERS][ACTION][LOCK]KEY, e.g. "+list" appends, "-list" removes,
"!key" writes only when absent, and "#key" locks the key.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newSourcesCommand())

	return rootCmd
}

// newMergeCommand creates the merge subcommand.
func newMergeCommand() *cobra.Command {
	var (
		advanced  bool
		keepLocks bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "merge <file> [file...]",
		Short: "Merge configuration files and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !advanced {
				cfg, err := layered.FromFiles(args...)
				if err != nil {
					return err
				}
				return writeTree(cmd, cfg.AsDict(), output, func(path string) error {
					return cfg.Save(path)
				})
			}

			cfg, err := layered.AdvancedFromFiles(args...)
			if err != nil {
				return err
			}
			tree := cfg.AsDict()
			save := cfg.Save
			if keepLocks {
				tree = cfg.AsDictKeepLocks()
				save = cfg.SaveWithLocks
			}
			return writeTree(cmd, tree, output, save)
		},
	}

	cmd.Flags().BoolVar(&advanced, "advanced", false, "enable symbolic merge directives in keys")
	cmd.Flags().BoolVar(&keepLocks, "keep-locks", false, "render lock markers into the output (implies --advanced)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the merged tree to a file instead of stdout (format by extension)")

	return cmd
}

// newGetCommand creates the get subcommand.
func newGetCommand() *cobra.Command {
	var advanced bool

	cmd := &cobra.Command{
		Use:   "get <key> <file> [file...]",
		Short: "Merge files and print the value at a dotted key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, paths := args[0], args[1:]

			cfg, err := mergeFiles(advanced, paths)
			if err != nil {
				return err
			}
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			return printJSON(cmd, value)
		},
	}

	cmd.Flags().BoolVar(&advanced, "advanced", false, "enable symbolic merge directives in keys")

	return cmd
}

// newSourcesCommand creates the sources subcommand.
func newSourcesCommand() *cobra.Command {
	var advanced bool

	cmd := &cobra.Command{
		Use:   "sources <file> [file...]",
		Short: "Merge files and report which file supplied each key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mergeFiles(advanced, args)
			if err != nil {
				return err
			}

			index := cfg.Sources()
			names := make([]string, 0, len(index))
			byName := make(map[string][]string, len(index))
			for source, keys := range index {
				name := fmt.Sprintf("%v", source)
				names = append(names, name)
				byName[name] = keys
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", name)
				for _, key := range byName[name] {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", key)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&advanced, "advanced", false, "enable symbolic merge directives in keys")

	return cmd
}

func mergeFiles(advanced bool, paths []string) (*layered.Configuration, error) {
	if advanced {
		cfg, err := layered.AdvancedFromFiles(paths...)
		if err != nil {
			return nil, err
		}
		return cfg.Configuration, nil
	}
	return layered.FromFiles(paths...)
}

func writeTree(cmd *cobra.Command, tree map[string]any, output string, save func(string) error) error {
	if output != "" {
		return save(output)
	}
	return printJSON(cmd, tree)
}

func printJSON(cmd *cobra.Command, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
