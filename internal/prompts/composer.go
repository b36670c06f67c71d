package prompts

import "fmt"

// ComposerSystem is the system prompt for the answer-composition step.
const ComposerSystem = `You are a helpful network engineering assistant.
Use the provided context to answer the question.
Be concise, technical, and actionable.
If the context doesn't fully answer the question, acknowledge that.`

// GeneralKnowledge stands in for context when the router chose a
// direct answer but supplied none, or produced no recognizable action.
const GeneralKnowledge = "Answer based on your networking knowledge."

// composerUserTemplate carries the question and gathered context into
// the composition call. Format verbs: question, context.
const composerUserTemplate = `Question: %s

Context:
%s

Answer:`

// ComposerUser renders the user message for the composition step.
func ComposerUser(question, context string) string {
	return fmt.Sprintf(composerUserTemplate, question, context)
}
