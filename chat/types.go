package chat

// SourceRef points at the origin of one context chunk, for citation display.
type SourceRef struct {
	Source     string
	PageNumber int
}

// Response carries the model's answer together with the retrieved context
// that grounded it.
type Response struct {
	Answer  string
	Context RetrievedContext
}
