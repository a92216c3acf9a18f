package exam

// MarkingPolicy captures the exam settings that drive scoring.
type MarkingPolicy struct {
	NegativeMarking    bool
	NegativePercentage int
	AllowBlankAnswers  bool
}

// ScoreResponse grades one response against the resolved correct option.
// correctOption comes from ResolveOption; a non-letter value matches no
// selection, so every answer to that question scores as incorrect.
func ScoreResponse(selected, correctOption string, marks float64, p MarkingPolicy) (isCorrect bool, obtained float64) {
	isCorrect = selected != "" && selected == correctOption

	switch {
	case isCorrect:
		obtained = marks
	case selected != "" && p.NegativeMarking:
		obtained = -marks * float64(p.NegativePercentage) / 100
	case selected == "" && !p.AllowBlankAnswers && p.NegativeMarking:
		// Blank answers count as wrong when the exam disallows them.
		obtained = -marks * float64(p.NegativePercentage) / 100
	}
	return isCorrect, obtained
}

// ClampScore floors an aggregate score at zero; negative marking never
// drives a total below it.
func ClampScore(total float64) float64 {
	if total < 0 {
		return 0
	}
	return total
}
