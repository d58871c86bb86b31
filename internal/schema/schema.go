// Package schema serializes the CLI command tree for machine consumers.
// Agents and shell-completion tooling read the output instead of scraping
// help text.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Command describes one node of the command tree. Hidden subcommands are
// omitted so the schema matches what help output advertises.
type Command struct {
	Path        string    `json:"path"`
	Use         string    `json:"use"`
	Short       string    `json:"short"`
	Aliases     []string  `json:"aliases,omitempty"`
	Flags       []Flag    `json:"flags,omitempty"`
	Subcommands []Command `json:"subcommands,omitempty"`
}

// Flag carries the local (non-inherited) flags of a command. Persistent
// flags appear only on the command that declares them.
type Flag struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
}

// Build serializes the subtree rooted at commandPath. An empty path yields
// the whole tree. Path segments match command names or aliases, the same
// resolution cobra applies at invocation time.
func Build(root *cobra.Command, commandPath string) (Command, error) {
	cmd, err := descend(root, commandPath)
	if err != nil {
		return Command{}, err
	}
	return describe(cmd), nil
}

func descend(cmd *cobra.Command, commandPath string) (*cobra.Command, error) {
	for _, segment := range strings.Fields(commandPath) {
		next := findChild(cmd, segment)
		if next == nil {
			return nil, fmt.Errorf("command not found: %s", commandPath)
		}
		cmd = next
	}
	return cmd, nil
}

func findChild(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name || slices.Contains(c.Aliases, name) {
			return c
		}
	}
	return nil
}

func describe(cmd *cobra.Command) Command {
	node := Command{
		Path:    strings.TrimSpace(cmd.CommandPath()),
		Use:     cmd.Use,
		Short:   cmd.Short,
		Aliases: cmd.Aliases,
		Flags:   localFlags(cmd),
	}
	for _, sub := range cmd.Commands() {
		if sub.Hidden {
			continue
		}
		node.Subcommands = append(node.Subcommands, describe(sub))
	}
	return node
}

func localFlags(cmd *cobra.Command) []Flag {
	flags := []Flag{}
	cmd.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		flags = append(flags, Flag{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Usage:     f.Usage,
			Default:   f.DefValue,
		})
	})
	return flags
}
