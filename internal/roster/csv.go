package roster

import (
    "encoding/csv"
    "io"
    "strings"
)

// CSVRow is one parsed roster upload row. StudentID may be empty when the
// upload only carries names.
type CSVRow struct {
    StudentID string
    Name      string
}

func isDigits(s string) bool {
    if s == "" {
        return false
    }
    for _, r := range s {
        if r < '0' || r > '9' {
            return false
        }
    }
    return true
}

// SplitRow detects the column order of one CSV row. Uploads arrive as
// either (id, name) or (name, id); a purely numeric column is taken to be
// the ID. Ambiguous rows default to (name, id).
func SplitRow(col0, col1 string) CSVRow {
    col0 = strings.TrimSpace(col0)
    col1 = strings.TrimSpace(col1)
    switch {
    case isDigits(col0) && !isDigits(col1):
        return CSVRow{StudentID: col0, Name: col1}
    case isDigits(col1) && !isDigits(col0):
        return CSVRow{StudentID: col1, Name: col0}
    default:
        return CSVRow{StudentID: col1, Name: col0}
    }
}

// ParseCSV reads a roster upload. Rows without a name are skipped, as is a
// leading header row.
func ParseCSV(r io.Reader) ([]CSVRow, error) {
    reader := csv.NewReader(r)
    reader.FieldsPerRecord = -1
    var rows []CSVRow
    first := true
    for {
        record, err := reader.Read()
        if err == io.EOF {
            break
        }
        if err != nil {
            return nil, err
        }
        var col0, col1 string
        if len(record) > 0 {
            col0 = record[0]
        }
        if len(record) > 1 {
            col1 = record[1]
        }
        if first {
            first = false
            if strings.EqualFold(strings.TrimSpace(col0), "student_id") || strings.EqualFold(strings.TrimSpace(col0), "name") {
                continue
            }
        }
        row := SplitRow(col0, col1)
        if row.Name == "" {
            continue
        }
        rows = append(rows, row)
    }
    return rows, nil
}
