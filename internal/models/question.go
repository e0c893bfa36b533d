package models

type QuestionCategory string

const (
	CategoryIntroduction   QuestionCategory = "Introduction"
	CategoryTechnical      QuestionCategory = "Technical"
	CategoryBehavioral     QuestionCategory = "Behavioral"
	CategoryProblemSolving QuestionCategory = "Problem Solving"
	CategoryLeadership     QuestionCategory = "Leadership"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Question is one generated interview question. The client echoes it back
// unchanged with the recorded answer.
type Question struct {
	ID               int              `json:"id"`
	Category         QuestionCategory `json:"category"`
	Text             string           `json:"question"`
	Difficulty       Difficulty       `json:"difficulty"`
	TimeLimitSeconds int              `json:"timeLimit"`
}
