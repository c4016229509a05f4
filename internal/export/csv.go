package export

import (
	"encoding/csv"
	"io"
)

// CSV download metadata.
const (
	CSVContentType = "text/csv"
	CSVFilename    = "relatorios.csv"
)

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(row.CSVRecord()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
