package extract

import (
	"io"

	"github.com/openqbank/qbank/internal/bank"
	"github.com/xuri/excelize/v2"
)

// XLSX reads question rows from the first sheet of a workbook. The
// first row is the header; columns are matched by name, not position.
type XLSX struct{}

func (XLSX) Parse(r io.Reader) ([]bank.NormalizedRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []bank.NormalizedRecord{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []bank.NormalizedRecord{}, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = headerKey(h)
	}

	out := []bank.NormalizedRecord{}
	for _, row := range rows[1:] {
		rec, ok := rowToRecord(headers, row)
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
