package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreResponse(t *testing.T) {
	negative := MarkingPolicy{NegativeMarking: true, NegativePercentage: 25, AllowBlankAnswers: true}
	strict := MarkingPolicy{NegativeMarking: true, NegativePercentage: 25, AllowBlankAnswers: false}
	plain := MarkingPolicy{}

	tests := []struct {
		name         string
		selected     string
		correct      string
		marks        float64
		policy       MarkingPolicy
		wantCorrect  bool
		wantObtained float64
	}{
		{"correct earns full marks", "B", "B", 4, negative, true, 4},
		{"wrong loses a quarter", "A", "B", 4, negative, false, -1},
		{"wrong without negative marking", "A", "B", 4, plain, false, 0},
		{"blank allowed costs nothing", "", "B", 4, negative, false, 0},
		{"blank disallowed is penalized", "", "B", 4, strict, false, -1},
		{"blank disallowed without negative marking", "", "B", 4, MarkingPolicy{AllowBlankAnswers: false}, false, 0},
		{"unresolved correct answer fails every selection", "A", "not a letter", 4, plain, false, 0},
		{"blank never equals blank correct", "", "", 4, plain, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCorrect, gotObtained := ScoreResponse(tt.selected, tt.correct, tt.marks, tt.policy)
			assert.Equal(t, tt.wantCorrect, gotCorrect)
			assert.InDelta(t, tt.wantObtained, gotObtained, 1e-9)
		})
	}
}

// Ten marks of correct answers and one wrong four-mark question at 25%
// negative marking scores 9.
func TestScoreAggregateExample(t *testing.T) {
	p := MarkingPolicy{NegativeMarking: true, NegativePercentage: 25, AllowBlankAnswers: true}

	total := 0.0
	for i := 0; i < 5; i++ {
		_, got := ScoreResponse("A", "A", 2, p)
		total += got
	}
	_, penalty := ScoreResponse("B", "A", 4, p)
	total += penalty

	assert.InDelta(t, 9.0, total, 1e-9)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-3.5))
	assert.Equal(t, 0.0, ClampScore(0))
	assert.Equal(t, 7.25, ClampScore(7.25))
}
