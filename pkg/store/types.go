package store

import "time"

// File mirrors the files table: one row per absolute path ever seen by a
// scan. Never deleted by the engine.
type File struct {
	ID                    int64
	Path                  string
	Filename              string
	Extension             string
	CreatedAt             time.Time
	ModifiedAt            time.Time
	Size                  int64
	ExtractedTextSummary  string
}

// Classification belongs to a File. At most one non-manual row exists per
// (FileID, ScanID); manual rows are keyed only by FileID and persist
// across scans.
type Classification struct {
	ID               int64
	FileID           int64
	ScanID           string
	Category         string
	Tag              string
	TierUsed         int
	ConfidenceScore  float64
	IsManual         bool
	ClassifiedAt     time.Time
}

// CoverPage is one-to-one with File.
type CoverPage struct {
	ID           int64
	FileID       int64
	CoverText    string
	Embedding    string // JSON-serialized float32 vector, "" if none
	DetectedAt   time.Time
}

// CoverSimilarityGroup is a member row of a connected component over
// cover-page cosine similarity. The whole table is rebuilt on each pass.
type CoverSimilarityGroup struct {
	ID              int64
	GroupID         string
	FileID          int64
	SimilarityScore float64
	AutoTag         string
}

// RuleType enumerates the three kinds of placement/classification rule.
type RuleType string

const (
	RuleTypeExtension RuleType = "extension"
	RuleTypeDate      RuleType = "date"
	RuleTypeContent   RuleType = "content"
)

// Rule is a user-authored node in the destination rule forest.
type Rule struct {
	ID         int64
	Priority   int
	Type       RuleType
	Value      string
	FolderName string
	ParentID   int64 // 0 means root
}

// CustomExtension maps an extension to a category, rejected at write time
// if it collides with the built-in map (§9 Open Question resolution);
// built-ins always win at read time regardless.
type CustomExtension struct {
	ID        int64
	Extension string
	Category  string
}

// CustomCategory is a user-defined category with a keyword list used both
// as an embedding prototype seed and as tag candidates.
type CustomCategory struct {
	ID       int64
	Name     string
	Keywords []string
}

// ConflictResolution is the apply-time policy for a destination that
// already exists.
type ConflictResolution string

const (
	ConflictOverwrite ConflictResolution = "overwrite"
	ConflictRename     ConflictResolution = "rename"
	ConflictSkip       ConflictResolution = "skip"
)

// ActionBatch is one row per apply invocation; the unit of undo/history.
type ActionBatch struct {
	ID                 int64
	ActionLogID        string
	FolderPath         string
	ScanID             string
	Moved              int
	Skipped            int
	Failed             int
	ConflictResolution ConflictResolution
	ExecutedAt         time.Time
	IsUndone           bool
}

// ActionType enumerates what an ActionLog row records.
type ActionType string

const (
	ActionMove   ActionType = "move"
	ActionSkip   ActionType = "skip"
	ActionFailed ActionType = "failed"
)

// ActionLog is a member of a batch via ActionLogID.
type ActionLog struct {
	ID              int64
	ActionLogID     string
	ActionType      ActionType
	SourcePath      string
	DestinationPath string
	ExecutedAt      time.Time
	IsUndone        bool
}

// BestClassification is the derived per-file view: the manual row if any,
// else the most recent auto row for the requested scan_id.
type BestClassification struct {
	File           File
	Classification Classification
}
