/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package report renders ordered report rows into concrete documents. The
// aggregation core only emits headers, lines and tables; everything about
// the on-disk shape lives here.
package report

import (
    "os"
    "path/filepath"
    "strings"
)

// MdDoc accumulates a markdown document in emission order.
type MdDoc struct {
    b     strings.Builder
    title string
}

func NewMdDoc(title string) *MdDoc {
    d := &MdDoc{title: title}
    if title != "" {
        d.b.WriteString(title + "\n")
        d.b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
    }
    return d
}

func (d *MdDoc) Header(level int, title string) {
    if level < 1 { level = 1 }
    if level > 6 { level = 6 }
    d.b.WriteString("\n" + strings.Repeat("#", level) + " " + title + "\n\n")
}

func (d *MdDoc) Line(text string) {
    d.b.WriteString(text + "\n")
}

// Table writes a pipe table. Every row is padded or truncated to the column
// count so a short row cannot shift later cells.
func (d *MdDoc) Table(columns []string, rows [][]string) {
    if len(columns) == 0 { return }
    d.b.WriteString("\n|" + strings.Join(columns, "|") + "|\n")
    sep := make([]string, len(columns))
    for i := range sep { sep[i] = " :--- " }
    d.b.WriteString("|" + strings.Join(sep, "|") + "|\n")
    for _, row := range rows {
        cells := make([]string, len(columns))
        for i := range cells {
            if i < len(row) { cells[i] = escapeCell(row[i]) }
        }
        d.b.WriteString("|" + strings.Join(cells, "|") + "|\n")
    }
}

func (d *MdDoc) String() string { return d.b.String() }

// WriteFile writes the document under dir with a .md extension.
func (d *MdDoc) WriteFile(dir, name string) (string, error) {
    path := filepath.Join(dir, name+".md")
    if err := os.WriteFile(path, []byte(d.b.String()), 0o644); err != nil { return "", err }
    return path, nil
}

func escapeCell(s string) string {
    return strings.ReplaceAll(s, "|", "\\|")
}
