package extract

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/openqbank/qbank/internal/bank"
)

// Text parses plain-text MCQ blocks of the shape produced by document
// conversion tools:
//
//	1. Question text, possibly wrapped
//	   over several lines
//	a) first option
//	b) second option
//	c) third option
//	d) fourth option
//	Answer: b
//	Explanation: optional, may wrap
//	Hint: optional
//	[Difficulty: easy]
//
// Question numbers may use Bengali digits; they are folded to ASCII
// before matching. Curriculum fields are not present in this format
// and stay empty for the importer to reject or the caller to fill in.
type Text struct{}

var (
	questionRe    = regexp.MustCompile(`^(\d+)\s*[.)]\s*(.+)$`)
	optionRe      = regexp.MustCompile(`^\(?([a-dA-D])\s*[.)]\s*(.*)$`)
	answerRe      = regexp.MustCompile(`(?i)^answer\s*[:\-]\s*(.+)$`)
	explanationRe = regexp.MustCompile(`(?i)^explanation\s*[:\-]\s*(.*)$`)
	hintRe        = regexp.MustCompile(`(?i)^hint\s*[:\-]\s*(.*)$`)
	difficultyRe  = regexp.MustCompile(`(?i)^\[?\s*difficulty\s*[:\-]\s*([a-z]+)\s*\]?$`)
)

var bengaliDigits = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
)

func (Text) Parse(r io.Reader) ([]bank.NormalizedRecord, error) {
	out := []bank.NormalizedRecord{}
	var cur *bank.NormalizedRecord
	var cont *string // field that absorbs wrapped lines

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Ques) != "" {
			out = append(out, *cur)
		}
		cur = nil
		cont = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(bengaliDigits.Replace(sc.Text()))
		if line == "" {
			cont = nil
			continue
		}

		if m := questionRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &bank.NormalizedRecord{QSerial: m[1], Ques: m[2]}
			cont = &cur.Ques
			continue
		}
		if cur == nil {
			continue
		}

		if m := optionRe.FindStringSubmatch(line); m != nil {
			switch strings.ToLower(m[1]) {
			case "a":
				cur.OptionA = m[2]
				cont = &cur.OptionA
			case "b":
				cur.OptionB = m[2]
				cont = &cur.OptionB
			case "c":
				cur.OptionC = m[2]
				cont = &cur.OptionC
			case "d":
				cur.OptionD = m[2]
				cont = &cur.OptionD
			}
			continue
		}
		if m := answerRe.FindStringSubmatch(line); m != nil {
			cur.Answer = strings.TrimSpace(m[1])
			cont = nil
			continue
		}
		if m := explanationRe.FindStringSubmatch(line); m != nil {
			cur.Explanation = strings.TrimSpace(m[1])
			cont = &cur.Explanation
			continue
		}
		if m := hintRe.FindStringSubmatch(line); m != nil {
			cur.Hint = strings.TrimSpace(m[1])
			cont = &cur.Hint
			continue
		}
		if m := difficultyRe.FindStringSubmatch(line); m != nil {
			cur.DifficultyLevel = strings.ToLower(m[1])
			cont = nil
			continue
		}

		// Wrapped continuation of the last free-text field.
		if cont != nil {
			*cont = strings.TrimSpace(*cont + " " + line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}
