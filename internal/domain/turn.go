package domain

// Turn is one completed question/answer exchange of a conversation.
// The turn sequence is append-only and owned by the caller's session store;
// it is passed into the answering engine by value on each call.
type Turn struct {
	Question string
	Answer   string
}
