// Package questionfile parses and validates question bank files. A file is
// a JSON array of question records, used by the importer and lint tools.
package questionfile

import (
	"encoding/json"
	"fmt"
	"strings"

	"quizrush/models"
)

// Record is one question as authored in a bank file.
type Record struct {
	GameType      string   `json:"game_type"`
	GradeLevel    string   `json:"grade_level"`
	Difficulty    string   `json:"difficulty"`
	Subject       string   `json:"subject"`
	Text          string   `json:"text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        int      `json:"points,omitempty"`
	TimeLimit     int      `json:"time_limit,omitempty"`
}

// Parse decodes a bank file.
func Parse(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}
	return records, nil
}

// Validate checks a record for the problems that would make it unplayable.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.GameType) == "" {
		return fmt.Errorf("game_type is required")
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if strings.TrimSpace(r.CorrectAnswer) == "" {
		return fmt.Errorf("correct_answer is required")
	}

	switch r.questionType() {
	case models.QuestionMultipleChoice:
		if len(r.Options) < 2 {
			return fmt.Errorf("multiple choice needs at least 2 options, got %d", len(r.Options))
		}
		if !r.optionsContainAnswer() {
			return fmt.Errorf("correct_answer %q is not among the options", r.CorrectAnswer)
		}
	case models.QuestionTrueFalse:
		answer := strings.ToLower(strings.TrimSpace(r.CorrectAnswer))
		if answer != "true" && answer != "false" {
			return fmt.Errorf("true/false answer must be true or false, got %q", r.CorrectAnswer)
		}
	case models.QuestionText:
		if len(r.Options) > 0 {
			return fmt.Errorf("free text questions take no options")
		}
	default:
		return fmt.Errorf("unknown question_type %q", r.QuestionType)
	}

	if r.Points < 0 {
		return fmt.Errorf("points must not be negative")
	}
	if r.TimeLimit < 0 {
		return fmt.Errorf("time_limit must not be negative")
	}
	return nil
}

// Question converts a validated record into a bank row, applying defaults.
func (r *Record) Question() (models.QuizQuestion, error) {
	if err := r.Validate(); err != nil {
		return models.QuizQuestion{}, err
	}

	points := r.Points
	if points == 0 {
		points = 100
	}
	timeLimit := r.TimeLimit
	if timeLimit == 0 {
		timeLimit = 30
	}

	var options string
	if len(r.Options) > 0 {
		encoded, err := json.Marshal(r.Options)
		if err != nil {
			return models.QuizQuestion{}, fmt.Errorf("encode options: %w", err)
		}
		options = string(encoded)
	}

	correct := r.CorrectAnswer
	if r.questionType() == models.QuestionTrueFalse {
		correct = strings.ToLower(strings.TrimSpace(correct))
	}

	return models.QuizQuestion{
		GameType:      strings.TrimSpace(r.GameType),
		GradeLevel:    strings.TrimSpace(r.GradeLevel),
		Difficulty:    defaultString(r.Difficulty, "medium"),
		Subject:       strings.TrimSpace(r.Subject),
		Text:          strings.TrimSpace(r.Text),
		QuestionType:  r.questionType(),
		Options:       options,
		CorrectAnswer: correct,
		Points:        points,
		TimeLimit:     timeLimit,
	}, nil
}

func (r *Record) questionType() string {
	if r.QuestionType == "" {
		return models.QuestionMultipleChoice
	}
	return r.QuestionType
}

func (r *Record) optionsContainAnswer() bool {
	want := strings.TrimSpace(r.CorrectAnswer)
	for _, opt := range r.Options {
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}

func defaultString(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
