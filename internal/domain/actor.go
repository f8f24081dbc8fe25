package domain

// Actor identifies the authenticated user performing an action.
type Actor struct {
	Username  string
	AccountID int64
}
