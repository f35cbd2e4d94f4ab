package models

// Track is a canonical track descriptor.
//
// Contributors is treated as a set; order and duplicates carry no meaning.
type Track struct {
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	Contributors []string `json:"contributors"`
	Duration     int      `json:"duration"`
	Album        string   `json:"album"`
	Cover        string   `json:"trackCover,omitempty"`
}

// Playlist is a normalized catalog playlist.
//
// TrackCount always equals len(Tracks); tracks that fail to normalize are dropped, not counted.
type Playlist struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	TrackCount  int     `json:"numTracks"`
	Cover       string  `json:"playlistCover,omitempty"`
	Tracks      []Track `json:"tracks"`
}

// PlaylistMeta names a playlist to be created. An empty Description is still sent.
type PlaylistMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MatchResult is the catalog candidate picked for a source track. An empty CandidateID means no match.
type MatchResult struct {
	CandidateID string `json:"candidateId"`
	Score       int    `json:"score"`
}

// Found reports whether a candidate was accepted.
func (m MatchResult) Found() bool {
	return m.CandidateID != ""
}

// MigrationOutcome is the result of a completed migration.
type MigrationOutcome struct {
	ShareLink     string  `json:"link"`
	MissingTracks []Track `json:"missingTracks"`
	MissingCount  int     `json:"numMissingTracks"`
}

// NewMigrationOutcome builds an outcome whose MissingCount matches its MissingTracks.
func NewMigrationOutcome(link string, missing []Track) *MigrationOutcome {
	if missing == nil {
		missing = []Track{}
	}
	return &MigrationOutcome{ShareLink: link, MissingTracks: missing, MissingCount: len(missing)}
}

// FieldError addresses a validation failure to a top-level request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the outcome of validating a migration request.
type ValidationResult struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors"`
}
