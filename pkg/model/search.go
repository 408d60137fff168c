package model

// SearchResult is a single web search hit. Results live only for the duration
// of one pipeline run and are never persisted.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// PageContent is the extracted text of one fetched page. Like SearchResult it
// exists only within a run.
type PageContent struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
