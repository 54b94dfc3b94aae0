package domain

// Note is a markdown document owned by exactly one user.
//
// OwnerID is immutable after creation. FolderID is optional; empty means
// the note is "Uncategorized". The folder reference is stored as given and
// is not verified against folder ownership (see the dashboard filter for
// the matching read-side behavior).
type Note struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	OwnerID  string `json:"owner_id"`
	FolderID string `json:"folder_id,omitempty"`
	Timestamps
}

// InFolder reports whether the note is filed in the given folder.
func (n *Note) InFolder(folderID string) bool {
	return n.FolderID == folderID
}

// Uncategorized reports whether the note has no folder reference.
func (n *Note) Uncategorized() bool {
	return n.FolderID == ""
}
