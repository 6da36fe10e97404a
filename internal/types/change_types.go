package types

// FileChangeKind describes one file-level effect of an edit.
type FileChangeKind uint8

const (
	FileCreated FileChangeKind = iota
	FileModified
	FileDeleted
)

func (k FileChangeKind) String() string {
	switch k {
	case FileCreated:
		return "created"
	case FileDeleted:
		return "deleted"
	default:
		return "modified"
	}
}

// PendingChange describes one file-level effect in preview mode. It is never
// applied; preview responses are the only place these exist.
type PendingChange struct {
	Path   string         `json:"path"`
	Kind   FileChangeKind `json:"kind"`
	Before string         `json:"before,omitempty"`
	After  string         `json:"after,omitempty"`
	// Diff is a unified-diff rendering of the document change, stable across
	// repeated preview calls with the same inputs.
	Diff string `json:"diff,omitempty"`
}

// PlannedFileRename records a file move implied by an edit (the declaring
// file's name matched the old symbol name). The physical rename happens as a
// separate best-effort step after commit, never during change computation.
type PlannedFileRename struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// CommitResult is the outcome of applying a snapshot diff to storage.
// On failure the file lists hold exactly the operations that completed before
// the failure; already-written files are not rolled back.
type CommitResult struct {
	Success       bool     `json:"success"`
	FilesCreated  []string `json:"files_created"`
	FilesModified []string `json:"files_modified"`
	FilesDeleted  []string `json:"files_deleted"`
	Error         error    `json:"-"`
}

// FileCount returns the total number of files touched.
func (r CommitResult) FileCount() int {
	return len(r.FilesCreated) + len(r.FilesModified) + len(r.FilesDeleted)
}

// OperationResult is the stable record returned for every transformation
// operation. Every outer protocol adapter (CLI, MCP) serializes this shape.
type OperationResult struct {
	OperationID    string          `json:"operation_id"`
	Success        bool            `json:"success"`
	Preview        bool            `json:"preview"`
	Snapshot       SnapshotVersion `json:"snapshot"`
	Stale          bool            `json:"stale,omitempty"`
	ReferenceCount int             `json:"reference_count"`
	FilesCreated   []string        `json:"files_created,omitempty"`
	FilesModified  []string        `json:"files_modified,omitempty"`
	FilesDeleted   []string        `json:"files_deleted,omitempty"`
	Changes        []PendingChange `json:"changes,omitempty"`
	Warning        string          `json:"warning,omitempty"`
	Error          *OperationError `json:"error,omitempty"`
}

// OperationError is the serialized form of a refactoring error: a stable
// machine-readable code, a human message, structured details, and suggested
// remediations.
type OperationError struct {
	Code         string         `json:"code"`
	Message      string         `json:"message"`
	Details      map[string]any `json:"details,omitempty"`
	Remediations []string       `json:"remediations,omitempty"`
}
