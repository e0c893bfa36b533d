package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/interview-coach/internal/models"
)

const noTranscriptMarker = "No transcript available - analysis based on audio characteristics"

// inline flattens caller-supplied text onto one line and drops the quote
// character that delimits it in a template, so it cannot close the quote early.
func inline(text, quote string) string {
	text = strings.Join(strings.Fields(text), " ")
	if quote == "" {
		return text
	}
	return strings.ReplaceAll(text, quote, "")
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRoleValidationPrompt asks for a single VALID/INVALID word.
func (pb *PromptBuilder) BuildRoleValidationPrompt(jobRole string) string {
	return fmt.Sprintf(`You are an expert career advisor. The user entered the job role: '%s'.
Determine if this is a real, plausible job role that exists in the real world.
Respond ONLY with a single word: "VALID" if it is real, "INVALID" if it is not.`, inline(jobRole, "'"))
}

// BuildQuestionsPrompt asks for five numbered questions, one per category.
func (pb *PromptBuilder) BuildQuestionsPrompt(jobRole string) string {
	return fmt.Sprintf(`Generate a list of 5 common but insightful interview questions for a '%s' position.
Return only the questions as a numbered list.
Make sure each question is unique and covers different aspects in this order:
1. Introduction/Background
2. Technical skills
3. Behavioral situations
4. Problem-solving
5. Leadership/teamwork

Format as:
1. [Question]
2. [Question]
3. [Question]
4. [Question]
5. [Question]`, inline(jobRole, "'"))
}

// BuildAnswerScoringPrompt creates prompt for scoring one spoken answer
func (pb *PromptBuilder) BuildAnswerScoringPrompt(jobRole, question string, metrics models.SpeechMetrics) string {
	transcript := inline(metrics.Transcript, `"`)
	if transcript == "" {
		transcript = noTranscriptMarker
	}

	return fmt.Sprintf(`You are a senior hiring manager for a '%s' position. Your task is to evaluate a candidate's answer to an interview question.

The question asked was:
"%s"

The candidate's transcribed answer is:
"%s"

Speech Analysis Metrics:
- Words per minute: %d
- Pause count: %d
- Filler word count: %d
- Confidence score: %.1f%%

Please provide your evaluation in a strict JSON format with two keys:
1. "score": An integer from 1 to 5, where 1 is poor and 5 is excellent.
2. "justification": A concise, one-sentence explanation for your score, providing constructive feedback.

Consider factors like:
- Relevance to the question
- Use of specific examples
- Structure and clarity
- Completeness of the answer
- Professional language
- Speech delivery (pacing, pauses, filler words)

If no transcript is available, focus on encouraging the candidate and provide a neutral score.

Example Response:
{
  "score": 4,
  "justification": "The candidate provided a solid example using the STAR method, but could have elaborated more on the final outcome."
}

JSON Response:`,
		inline(jobRole, "'"), inline(question, `"`), transcript,
		metrics.WordsPerMinute, metrics.PauseCount, metrics.FillerWordCount, metrics.Confidence*100)
}

// BuildSessionNarrativePrompt creates prompt for the final interview summary
func (pb *PromptBuilder) BuildSessionNarrativePrompt(jobRole string, summary models.SessionMetrics, history []models.AnswerEvaluation) string {
	var breakdown strings.Builder
	for i, item := range history {
		justification := inline(item.Justification, "")
		if justification == "" {
			justification = "No feedback available"
		}
		fmt.Fprintf(&breakdown, "Question %d:\n- Content Score: %d/5\n- Speaking Pace: %d WPM\n- Filler Words: %d\n- Justification: %s\n\n",
			i+1, item.Score, item.WordsPerMinute, item.FillerWordCount, justification)
	}

	return fmt.Sprintf(`You are an expert career coach providing a final summary for a mock interview for a '%s' position.
The candidate has answered %d questions. Here is their performance data:

**Speech Delivery Metrics:**
- Average Speaking Pace: %d WPM (Target: 130-150 WPM)
- Total Pauses: %d
- Total Filler Words: %d
- Average Confidence: %d%%

**Content Quality:**
- Average Content Score: %.1f out of 5

**Individual Question Performance:**
%s
Provide a comprehensive, encouraging, and actionable summary. Use Markdown formatting.
Structure your feedback into:

## 🎯 Overall Performance
Brief overview of their performance

## 💪 Strengths
What they did well (2-3 points)

## 📈 Areas for Improvement
Specific areas to work on (2-3 points with actionable advice)

## 🎤 Speaking Delivery Tips
Specific advice on pace, pauses, and filler words

## 💡 Final Encouragement
Motivational closing with next steps

Keep the tone professional yet encouraging. Be specific and actionable in your recommendations.`,
		inline(jobRole, "'"), summary.QuestionsAnswered,
		summary.AverageWPM, summary.TotalPauses, summary.TotalFillerWords, summary.AverageConfidencePercent,
		summary.AverageContentScore, breakdown.String())
}
