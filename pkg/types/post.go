package types

// GeneratedPost is a parsed model response: the first non-empty line of
// the raw output becomes the title, the rest becomes the markdown body.
type GeneratedPost struct {
	Title   string
	Content string
}

// PRInfo contains pull request information
type PRInfo struct {
	PRNumber int64
	PRURL    string
	Title    string
	Status   string
}
