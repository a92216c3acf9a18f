package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestForFilename(t *testing.T) {
	assert.IsType(t, XLSX{}, ForFilename("bank.xlsx"))
	assert.IsType(t, XLSX{}, ForFilename("BANK.XLSM"))
	assert.IsType(t, CSV{}, ForFilename("export.csv"))
	assert.IsType(t, Text{}, ForFilename("dump.txt"))
	assert.Nil(t, ForFilename("questions.docx"))
	assert.Nil(t, ForFilename("noext"))
}

func TestCSVParse(t *testing.T) {
	in := strings.Join([]string{
		`Question,Class,Subject,Chapter,Option A,Option B,Option C,Option D,Ans,Difficulty`,
		`What is velocity?,10,Physics,Motion,speed,speed with direction,mass,force,B,easy`,
		`,,,,,,,,,`, // blank row is skipped
		`"What is 2,2?",9,Math,,3,4,22,none,B,`,
	}, "\n")

	recs, err := CSV{}.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "What is velocity?", recs[0].Ques)
	assert.Equal(t, "10", recs[0].Classname)
	assert.Equal(t, "Physics", recs[0].Subject)
	assert.Equal(t, "Motion", recs[0].Chapter)
	assert.Equal(t, "speed with direction", recs[0].OptionB)
	assert.Equal(t, "B", recs[0].Answer)
	assert.Equal(t, "easy", recs[0].DifficultyLevel)

	assert.Equal(t, "What is 2,2?", recs[1].Ques)
	assert.Equal(t, "", recs[1].Chapter)
}

func TestCSVParseEmpty(t *testing.T) {
	recs, err := CSV{}.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Header only, no data rows.
	recs, err = CSV{}.Parse(strings.NewReader("ques,subject,classname\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestXLSXParse(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1",
		&[]any{"ques", "classname", "subject", "option_a", "option_b", "option_c", "option_d", "answer"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2",
		&[]any{"What is gravity?", "10", "Physics", "a force", "a colour", "a sound", "a taste", "A"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3",
		&[]any{"Partial row", "9", "Math"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	recs, err := XLSX{}.Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "What is gravity?", recs[0].Ques)
	assert.Equal(t, "a force", recs[0].OptionA)
	assert.Equal(t, "A", recs[0].Answer)
	assert.Equal(t, "Partial row", recs[1].Ques)
	assert.Equal(t, "", recs[1].OptionA)
}

func TestTextParse(t *testing.T) {
	in := `
1. What is the unit of force,
   as defined in SI?
a) Newton
b) Joule
c) Watt
d) Pascal
Answer: a
Explanation: Force is measured in newtons,
named after Isaac Newton.
[Difficulty: Easy]

২. Bengali-numbered question?
a) yes
b) no
Answer: A
Hint: think about the digits
`
	recs, err := Text{}.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "1", first.QSerial)
	assert.Equal(t, "What is the unit of force, as defined in SI?", first.Ques)
	assert.Equal(t, "Newton", first.OptionA)
	assert.Equal(t, "Pascal", first.OptionD)
	assert.Equal(t, "a", first.Answer)
	assert.Equal(t, "Force is measured in newtons, named after Isaac Newton.", first.Explanation)
	assert.Equal(t, "easy", first.DifficultyLevel)

	second := recs[1]
	assert.Equal(t, "2", second.QSerial)
	assert.Equal(t, "Bengali-numbered question?", second.Ques)
	assert.Equal(t, "A", second.Answer)
	assert.Equal(t, "think about the digits", second.Hint)
}

func TestTextParseGarbage(t *testing.T) {
	recs, err := Text{}.Parse(strings.NewReader("no questions here\njust prose\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = Text{}.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
