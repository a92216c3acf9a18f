package extract

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/openqbank/qbank/internal/bank"
)

// CSV reads question rows from a comma-separated file with a header
// row. Column matching follows the same aliases as the xlsx extractor.
type CSV struct{}

func (CSV) Parse(r io.Reader) ([]bank.NormalizedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are common in exports
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []bank.NormalizedRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = headerKey(h)
	}

	out := []bank.NormalizedRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, ok := rowToRecord(headers, row)
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
