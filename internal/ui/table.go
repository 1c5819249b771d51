package ui

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// KeystoreSummary describes one installed keystore.
type KeystoreSummary struct {
	AppIdentifier string
	Type          string
	Platform      string
	Keystore      string
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 100,
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// PrintKeystoreSummary renders the "Installed keystores" table.
func PrintKeystoreSummary(w io.Writer, s KeystoreSummary) error {
	platform := s.Platform
	if platform == "" {
		platform = "android"
	}

	io.WriteString(w, Success.Sprint("Installed keystores")+"\n")
	table := newTable(w, []string{"Parameter", "Value"})
	rows := [][]string{
		{"App Identifier", s.AppIdentifier},
		{"Type", s.Type},
		{"Platform", platform},
		{"Keystore", s.Keystore},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintNukeList renders the files that nuke is about to delete. Paths are
// shown relative to root.
func PrintNukeList(w io.Writer, root string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	io.WriteString(w, Success.Sprint("Files that are going to be deleted")+"\n")
	table := newTable(w, []string{"Type", "File Name"})
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = f
		}
		name := filepath.Base(rel)
		kind := strings.TrimSuffix(name, ".keystore")
		if i := strings.LastIndex(kind, "-"); i >= 0 {
			kind = kind[i+1:]
		}
		if err := table.Append([]string{kind, filepath.ToSlash(rel)}); err != nil {
			return err
		}
	}
	return table.Render()
}
