// Package extract turns uploaded files into normalized question records.
// Extractors are forgiving: unparseable content yields an empty list,
// and validation is the importer's job.
package extract

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/openqbank/qbank/internal/bank"
)

// Extractor parses one upload into normalized records.
type Extractor interface {
	Parse(r io.Reader) ([]bank.NormalizedRecord, error)
}

// ForFilename picks an extractor by file extension; nil when the
// format is unsupported.
func ForFilename(name string) Extractor {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return XLSX{}
	case ".csv":
		return CSV{}
	case ".txt", ".text":
		return Text{}
	}
	return nil
}

// headerKey folds a sheet header onto its canonical record field name.
// Unknown headers map to "" and their columns are ignored.
func headerKey(h string) string {
	switch strings.ToLower(strings.TrimSpace(h)) {
	case "qserial", "serial", "sl", "sl no", "no":
		return "qserial"
	case "classname", "class", "class name":
		return "classname"
	case "subject":
		return "subject"
	case "chapter":
		return "chapter"
	case "topic":
		return "topic"
	case "ques", "question", "question text":
		return "ques"
	case "option_a", "option a", "optiona", "a":
		return "option_a"
	case "option_b", "option b", "optionb", "b":
		return "option_b"
	case "option_c", "option c", "optionc", "c":
		return "option_c"
	case "option_d", "option d", "optiond", "d":
		return "option_d"
	case "answer", "correct answer", "ans":
		return "answer"
	case "explanation", "solution":
		return "explanation"
	case "hint":
		return "hint"
	case "difficulty_level", "difficulty", "level":
		return "difficulty_level"
	case "reference", "ref", "source":
		return "reference"
	}
	return ""
}

func setField(rec *bank.NormalizedRecord, key, val string) {
	val = strings.TrimSpace(val)
	switch key {
	case "qserial":
		rec.QSerial = val
	case "classname":
		rec.Classname = val
	case "subject":
		rec.Subject = val
	case "chapter":
		rec.Chapter = val
	case "topic":
		rec.Topic = val
	case "ques":
		rec.Ques = val
	case "option_a":
		rec.OptionA = val
	case "option_b":
		rec.OptionB = val
	case "option_c":
		rec.OptionC = val
	case "option_d":
		rec.OptionD = val
	case "answer":
		rec.Answer = val
	case "explanation":
		rec.Explanation = val
	case "hint":
		rec.Hint = val
	case "difficulty_level":
		rec.DifficultyLevel = val
	case "reference":
		rec.Reference = val
	}
}

// rowToRecord applies a header mapping to one data row. Returns false
// when the row is entirely blank.
func rowToRecord(headers []string, row []string) (bank.NormalizedRecord, bool) {
	var rec bank.NormalizedRecord
	nonEmpty := false
	for i, key := range headers {
		if key == "" || i >= len(row) {
			continue
		}
		if strings.TrimSpace(row[i]) != "" {
			nonEmpty = true
		}
		setField(&rec, key, row[i])
	}
	return rec, nonEmpty
}
