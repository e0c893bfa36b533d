package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const answerScoreSchema = `{
  "type": "object",
  "required": ["score", "justification"],
  "properties": {
    "score": {"type": "integer", "minimum": 1, "maximum": 5},
    "justification": {"type": "string", "minLength": 1}
  }
}`

var answerScoreValidator = jsonschema.MustCompileString("answer_score.json", answerScoreSchema)

type answerScore struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// parseAnswerScore decodes a model's scoring reply. Any deviation from the
// schema is reported as ErrMalformedModelOutput.
func parseAnswerScore(response string) (answerScore, error) {
	raw := []byte(extractJSON(response))

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return answerScore{}, errors.Wrapf(ErrMalformedModelOutput, "invalid JSON: %v", err)
	}
	if err := answerScoreValidator.Validate(doc); err != nil {
		return answerScore{}, errors.Wrapf(ErrMalformedModelOutput, "schema violation: %v", err)
	}

	var score answerScore
	if err := json.Unmarshal(raw, &score); err != nil {
		return answerScore{}, errors.Wrapf(ErrMalformedModelOutput, "decode: %v", err)
	}
	score.Justification = strings.TrimSpace(score.Justification)
	if score.Justification == "" {
		return answerScore{}, errors.Wrap(ErrMalformedModelOutput, "blank justification")
	}

	return score, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
