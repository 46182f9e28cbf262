package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/config"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the template catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a catalog file and print its contents summary",
		Long:  `Validates the catalog at path, or at catalog.path from the config when no path is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultCatalogPath
			if len(args) > 0 {
				path = args[0]
			} else if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				path = cfg.Catalog.Path
			}
			snap, err := catalog.Load(path)
			if err != nil {
				return err
			}
			printSummary(cmd, snap)
			return nil
		},
	})
	return cmd
}

func printSummary(cmd *cobra.Command, snap *catalog.Snapshot) {
	out := cmd.OutOrStdout()
	n := snap.Counts()
	fmt.Fprintf(out, "catalog %s is valid\n", snap.Source())
	fmt.Fprintf(out, "templates: %d, categories: %d, components: %d, styles: %d\n",
		n.Templates, n.Categories, n.Components, n.Styles)
	for _, key := range snap.CategoryKeys() {
		c, _ := snap.Category(key)
		fmt.Fprintf(out, "  %s %s (%s): %d\n", c.Icon, c.Name, key, len(snap.TemplatesByCategory(key)))
	}
	if groups := snap.ComponentCategories(); len(groups) > 0 {
		fmt.Fprintf(out, "component groups: %s\n", strings.Join(groups, ", "))
	}
}
