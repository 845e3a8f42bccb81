package store

// StateBlob is one keyed JSON document in the study_state table.
//
// Every persisted collection (progress, favorites, folders, flashcards,
// search history, custom tabs, notes) is stored whole as a single blob and
// replaced atomically on write.
type StateBlob struct {
	Key       string
	Value     string
	UpdatedTs int64
}

// Well-known blob keys.
const (
	StateKeyProgress      = "progress"
	StateKeyFavorites     = "favorites"
	StateKeyFolders       = "folders"
	StateKeyFlashcards    = "flashcards"
	StateKeySearchHistory = "search_history"
	StateKeyCustomTabs    = "custom_tabs"
	StateKeyNotes         = "notes"
	StateKeyOwner         = "auth_owner"
	StateKeySchemaVersion = "schema_version"
)

type FindStateBlob struct {
	Key *string
}

type DeleteStateBlob struct {
	Key string
}
