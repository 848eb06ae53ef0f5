package store

// Key layout:
//
//	books_<userId>          JSON array of domain.Book
//	user:<userId>           domain.User
//	user:idx:email:<email>  userId
//	sess:<sessionId>        domain.Session
//	session:active          JSON string, the active session's user id
const (
	booksPrefix      = "books_"
	userPrefix       = "user:"
	sessionPrefix    = "sess:"
	activeSessionKey = "session:active"
	indexSegment     = "idx:"
)

// BooksKey returns the collection key for a user.
func BooksKey(userID string) string {
	return booksPrefix + userID
}

func indexKey(prefix, name, value string) string {
	return prefix + indexSegment + name + ":" + value
}
