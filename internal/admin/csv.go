package admin

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// utf8BOM makes the export open cleanly in spreadsheet software that
// otherwise misreads UTF-8 Chinese text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV writes records as CSV: one header row from the first record's
// keys (sorted for a stable layout), one row per record, non-scalar values
// JSON-stringified inline.
func ExportCSV(w io.Writer, records any) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("csv export needs a slice of records: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no records to export")
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, len(headers))
		for i, h := range headers {
			rec[i] = cell(row[h])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return fmt.Sprintf("%t", x)
	case float64:
		// json numbers; render integers without the decimal point
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	}
}

// ExportFilename is `<collection>_<ISO date>.csv`, e.g. leads_2026-08-29.csv.
func ExportFilename(collection string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", collection, now.UTC().Format("2006-01-02"))
}
