package report

import (
    "encoding/csv"
    "os"
    "path/filepath"
)

// CsvDoc collects rows for the CSV metrics output. Headers and free lines
// have no CSV shape and are dropped, so a CsvDoc can sit behind the same
// emission calls as a markdown document.
type CsvDoc struct {
    records [][]string
}

func NewCsvDoc() *CsvDoc { return &CsvDoc{} }

func (d *CsvDoc) Header(level int, title string) {}

func (d *CsvDoc) Line(text string) {}

func (d *CsvDoc) Table(columns []string, rows [][]string) {
    d.records = append(d.records, columns)
    d.records = append(d.records, rows...)
}

func (d *CsvDoc) WriteFile(dir, name string) (string, error) {
    path := filepath.Join(dir, name+".csv")
    f, err := os.Create(path)
    if err != nil { return "", err }
    defer f.Close()
    w := csv.NewWriter(f)
    if err := w.WriteAll(d.records); err != nil { return "", err }
    return path, nil
}

func (d *CsvDoc) Records() [][]string { return d.records }
