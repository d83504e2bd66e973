package notestore

// SortUpdated orders FindNotesMetadata results by last update.
const SortUpdated = 2

// Note mirrors the note-store note record. Timestamps are Unix milliseconds.
type Note struct {
	GUID              string     `json:"guid,omitempty"`
	Title             string     `json:"title"`
	Content           string     `json:"content,omitempty"`
	NotebookGUID      string     `json:"notebookGuid,omitempty"`
	Created           int64      `json:"created,omitempty"`
	Updated           int64      `json:"updated,omitempty"`
	UpdateSequenceNum int32      `json:"updateSequenceNum,omitempty"`
	Resources         []Resource `json:"resources,omitempty"`
}

// Notebook is a container of notes.
type Notebook struct {
	GUID            string `json:"guid"`
	Name            string `json:"name"`
	DefaultNotebook bool   `json:"defaultNotebook,omitempty"`
	ServiceCreated  int64  `json:"serviceCreated,omitempty"`
	ServiceUpdated  int64  `json:"serviceUpdated,omitempty"`
}

// NoteFilter narrows FindNotesMetadata.
type NoteFilter struct {
	Order        int    `json:"order,omitempty"`
	Ascending    bool   `json:"ascending"`
	NotebookGUID string `json:"notebookGuid,omitempty"`
	Words        string `json:"words,omitempty"`
}

// ResultSpec selects which metadata fields FindNotesMetadata fills in.
type ResultSpec struct {
	IncludeTitle        bool `json:"includeTitle"`
	IncludeCreated      bool `json:"includeCreated"`
	IncludeUpdated      bool `json:"includeUpdated"`
	IncludeNotebookGUID bool `json:"includeNotebookGuid"`
}

// NoteMetadata is one entry of a metadata listing.
type NoteMetadata struct {
	GUID         string `json:"guid"`
	Title        string `json:"title,omitempty"`
	NotebookGUID string `json:"notebookGuid,omitempty"`
	Created      int64  `json:"created,omitempty"`
	Updated      int64  `json:"updated,omitempty"`
}

// NotesMetadataList is one page of FindNotesMetadata results.
type NotesMetadataList struct {
	StartIndex int32          `json:"startIndex"`
	TotalNotes int32          `json:"totalNotes"`
	Notes      []NoteMetadata `json:"notes"`
}

// Resource is an attachment referenced from note content by hash.
type Resource struct {
	GUID       string              `json:"guid"`
	NoteGUID   string              `json:"noteGuid,omitempty"`
	Mime       string              `json:"mime,omitempty"`
	Attributes *ResourceAttributes `json:"attributes,omitempty"`
}

// ResourceAttributes carries the resource's origin.
type ResourceAttributes struct {
	SourceURL string `json:"sourceURL,omitempty"`
	FileName  string `json:"fileName,omitempty"`
}

// SyncState reports the account-wide update counter.
type SyncState struct {
	CurrentTime    int64 `json:"currentTime"`
	FullSyncBefore int64 `json:"fullSyncBefore"`
	UpdateCount    int32 `json:"updateCount"`
	Uploaded       int64 `json:"uploaded,omitempty"`
}
