package domain

// Folder groups a user's notes. Names are display-only and need not be
// unique. Folders are never deleted directly; they disappear only when
// their owner's account is deleted.
type Folder struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
	Timestamps
}
