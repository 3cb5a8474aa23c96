package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptClassify is the classification system prompt. No placeholders.
	PromptClassify = "classify"

	// PromptSummarise expects %d (max length) and %s (content).
	PromptSummarise = "summarise"

	// PromptKeywords expects %d (count) and %s (content).
	PromptKeywords = "keywords"

	// PromptAnswer expects %s (content) and %s (question).
	PromptAnswer = "answer"

	// PromptDescribeImage is sent with image payloads. No placeholders.
	PromptDescribeImage = "describe_image"
)
