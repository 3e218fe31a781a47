package roster

import (
    "strings"
    "testing"
)

func TestSplitRowIDFirst(t *testing.T) {
    row := SplitRow("123456", "Jane Doe")
    if row.StudentID != "123456" || row.Name != "Jane Doe" {
        t.Fatalf("unexpected row %+v", row)
    }
}

func TestSplitRowNameFirst(t *testing.T) {
    row := SplitRow("Jane Doe", "123456")
    if row.StudentID != "123456" || row.Name != "Jane Doe" {
        t.Fatalf("unexpected row %+v", row)
    }
}

func TestSplitRowAmbiguousDefaultsNameFirst(t *testing.T) {
    row := SplitRow("Jane Doe", "ABC123")
    if row.Name != "Jane Doe" || row.StudentID != "ABC123" {
        t.Fatalf("unexpected row %+v", row)
    }
}

func TestSplitRowTrimsWhitespace(t *testing.T) {
    row := SplitRow("  123456 ", " Jane Doe ")
    if row.StudentID != "123456" || row.Name != "Jane Doe" {
        t.Fatalf("unexpected row %+v", row)
    }
}

func TestParseCSVSkipsHeader(t *testing.T) {
    in := "student_id,name\n123456,Jane Doe\n789012,John Smith\n"
    rows, err := ParseCSV(strings.NewReader(in))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(rows) != 2 {
        t.Fatalf("expected 2 rows, got %d", len(rows))
    }
    if rows[0].Name != "Jane Doe" || rows[1].StudentID != "789012" {
        t.Fatalf("unexpected rows %+v", rows)
    }
}

func TestParseCSVNoHeader(t *testing.T) {
    in := "123456,Jane Doe\n"
    rows, err := ParseCSV(strings.NewReader(in))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(rows) != 1 || rows[0].StudentID != "123456" {
        t.Fatalf("unexpected rows %+v", rows)
    }
}

func TestParseCSVSkipsNamelessRows(t *testing.T) {
    in := "123456,Jane Doe\n,\n999999,\n"
    rows, err := ParseCSV(strings.NewReader(in))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(rows) != 1 {
        t.Fatalf("nameless rows must be skipped, got %+v", rows)
    }
}

func TestParseCSVSingleColumn(t *testing.T) {
    in := "name\nJane Doe\nJohn Smith\n"
    rows, err := ParseCSV(strings.NewReader(in))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(rows) != 2 {
        t.Fatalf("expected 2 rows, got %d", len(rows))
    }
    if rows[0].Name != "Jane Doe" || rows[0].StudentID != "" {
        t.Fatalf("unexpected row %+v", rows[0])
    }
}

func TestParseCSVRaggedRows(t *testing.T) {
    in := "123456,Jane Doe\nJohn Smith\n"
    rows, err := ParseCSV(strings.NewReader(in))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(rows) != 2 || rows[1].Name != "John Smith" {
        t.Fatalf("unexpected rows %+v", rows)
    }
}
