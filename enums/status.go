package enums

// PostStatus is the moderation state of a mention as shown on the dashboard.
type PostStatus string

const (
	PostStatusPending PostStatus = "pending"
	PostStatusFlagged PostStatus = "flagged"
)
