package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/keshon/slashkit/internal/discord"
	"github.com/keshon/slashkit/internal/docs"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the registered command tree",
	RunE: func(c *cobra.Command, _ []string) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		printTree(c.OutOrStdout(), a.registry)
		return nil
	},
}

var defsCmd = &cobra.Command{
	Use:   "defs",
	Short: "Print the application command definitions per sync scope as JSON",
	RunE: func(c *cobra.Command, _ []string) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(discord.Definitions(a.registry))
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print a markdown reference of every command",
	RunE: func(c *cobra.Command, _ []string) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		return docs.WriteMarkdown(c.OutOrStdout(), a.registry)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd, defsCmd, docsCmd)
}

func printTree(w io.Writer, reg *cmd.Registry) {
	for _, root := range reg.All() {
		line := root.Name()
		if root.GuildID() != "" {
			line += " (guild " + root.GuildID() + ")"
		}
		printNode(w, root, line, 0)
		for _, g := range root.Groups() {
			fmt.Fprintf(w, "  %s - %s\n", g.Name(), g.Description())
			for _, sub := range g.SubCommands() {
				printNode(w, sub, sub.Name(), 2)
			}
		}
		for _, sub := range root.SubCommands() {
			printNode(w, sub, sub.Name(), 1)
		}
	}
}

func printNode(w io.Writer, n *cmd.Node, label string, depth int) {
	fmt.Fprintf(w, "%s%s%s - %s\n", strings.Repeat("  ", depth), label, docs.Arguments(n), n.Description())
}
