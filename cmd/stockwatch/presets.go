package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rickgao/stockwatch/internal/catalog"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in catalog presets",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Preset", "Base URL", "Description"})

		for _, name := range catalog.PresetNames() {
			p, _ := catalog.LookupPreset(name)
			t.AppendRow(table.Row{name, p.BaseURL, p.Description})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
