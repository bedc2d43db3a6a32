package types

// PublishStatus describes how a publishing run ended.
type PublishStatus string

const (
	// StatusCreated means a pull request was opened.
	StatusCreated PublishStatus = "created"
	// StatusRejected means the run stopped on a user-correctable
	// condition (bad config, unreachable generator, nothing to commit,
	// remote validation refusal).
	StatusRejected PublishStatus = "rejected"
)

// PublishResult is the outcome of one publishing run. Nothing about a
// run persists beyond the process; state is rebuilt from the remote
// repository and the model API on each invocation.
type PublishResult struct {
	Status PublishStatus
	PRURL  string
	Reason string
}

// Rejected builds a rejection outcome with the given reason.
func Rejected(reason string) *PublishResult {
	return &PublishResult{Status: StatusRejected, Reason: reason}
}
