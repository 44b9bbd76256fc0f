package models

const (
	// Form10Q is the SEC form type searched for in a company's filing history.
	// Amendments (10-Q/A) carry a different form type and are not matched.
	Form10Q = "10-Q"
)

var (
	// PromptTemplate frames retrieved filing passages for the answer step.
	// Placeholders: assembled context, then the user question.
	PromptTemplate = `You are answering questions about a company's 10-Q filing.
Use ONLY the context below. Cite sources like [Source 1].

Context:
%s

Question: %s
Answer:
`
)
