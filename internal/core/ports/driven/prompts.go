package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether it is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer is the grounded answer template. It expects two %s
	// placeholders: the retrieved context and the question. The template
	// must instruct the model to answer only from the context, to state
	// explicitly when the context does not contain the answer, and never
	// to fabricate facts.
	PromptAnswer = "answer"
)
