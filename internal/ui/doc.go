// Package ui provides semantic text formatting for flint's CLI output.
//
// Formatters render content by kind (commands, paths, user values) and pick
// colors when the terminal supports them. When NO_COLOR is set or the
// terminal cannot show colors, text decorations are used instead:
//
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - Muted: (parentheses)
//   - Others: no decoration
//
// Tables (installed keystore summaries, files about to be nuked) are drawn
// with olekukonko/tablewriter, see table.go.
package ui
