package domain

// SuggestedTopic response of GET /posts/suggest/topic
type SuggestedTopic struct {
	Category string `json:"category"`
	Topic    string `json:"topic"`
}

// SuggestedSlug response of POST /posts/suggest/slug
type SuggestedSlug struct {
	Slug string `json:"slug"`
}

// SuggestedSummary response of POST /posts/suggest/summary
type SuggestedSummary struct {
	Summary string `json:"summary"`
}
