package models

import "time"

// Defaults for projects created without explicit
// timeline settings.
const (
	DefaultFrameRate        int64 = 30
	DefaultResolutionWidth  int64 = 1920
	DefaultResolutionHeight int64 = 1080
)

const (
	RootID    int64 = -1
	RootLogin       = "root"
)

type EditorIn struct {
	Login string `json:"login"`
	Pass  string `json:"pass"`
}

type Editor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Project is a stored timeline project.
// DurationMs is an aggregate over the project's clips.
type Project struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	DurationMs       int64     `json:"duration_ms"`
	FrameRate        int64     `json:"frame_rate"`
	ResolutionWidth  int64     `json:"resolution_width"`
	ResolutionHeight int64     `json:"resolution_height"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProjectIn is a request to create a project.
// Omitted fields fall back to defaults.
type ProjectIn struct {
	Name             string `json:"name"`
	FrameRate        *int64 `json:"frame_rate"`
	ResolutionWidth  *int64 `json:"resolution_width"`
	ResolutionHeight *int64 `json:"resolution_height"`
}

const (
	AssetTypeVideo = "video"
	AssetTypeAudio = "audio"
	AssetTypeImage = "image"
)

// Asset is an imported media file's metadata record.
// DurationMs is nil for stills, Width/Height are nil for audio.
type Asset struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	FilePath      string    `json:"file_path"`
	AssetType     string    `json:"asset_type"`
	DurationMs    *int64    `json:"duration_ms"`
	Width         *int64    `json:"width"`
	Height        *int64    `json:"height"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ImportedAt    time.Time `json:"imported_at"`
}

// AssetIn is a request to import an asset.
// Empty AssetType is sniffed from the file when it exists on disk.
type AssetIn struct {
	ProjectID     int64  `json:"project_id"`
	FilePath      string `json:"file_path"`
	AssetType     string `json:"asset_type"`
	DurationMs    *int64 `json:"duration_ms"`
	Width         *int64 `json:"width"`
	Height        *int64 `json:"height"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

type AssetFilter struct {
	Query      string
	MaxRespLen int
}

const (
	TrackTypeVideo = "video"
	TrackTypeAudio = "audio"
)

// Track is an ordered lane within a project.
// OrderIndex values of one project form a dense sequence from 0.
type Track struct {
	ID         int64  `json:"id"`
	ProjectID  int64  `json:"project_id"`
	TrackType  string `json:"track_type"`
	OrderIndex int64  `json:"order_index"`
	IsLocked   bool   `json:"is_locked"`
	IsMuted    bool   `json:"is_muted"`
}

// Clip is a time-positioned reference from a track to an asset.
// A clip with nil AssetID is a gap.
type Clip struct {
	ID                 int64   `json:"id"`
	TrackID            int64   `json:"track_id"`
	AssetID            *int64  `json:"asset_id"`
	StartTimeMs        int64   `json:"start_time_ms"`
	DurationMs         int64   `json:"duration_ms"`
	AssetStartOffsetMs int64   `json:"asset_start_offset_ms"`
	AssetEndOffsetMs   int64   `json:"asset_end_offset_ms"`
	Volume             float64 `json:"volume"`
	IsMuted            bool    `json:"is_muted"`
}

// ClipIn is a request to place a clip on an existing track.
// Nil AssetID places a gap clip; nil DurationMs copies the
// asset's duration (0 when the asset has none).
type ClipIn struct {
	TrackID     int64  `json:"track_id"`
	AssetID     *int64 `json:"asset_id"`
	StartTimeMs int64  `json:"start_time_ms"`
	DurationMs  *int64 `json:"duration_ms"`
}

type TrackWithClip struct {
	Track Track `json:"track"`
	Clip  Clip  `json:"clip"`
}

type TrackFlags struct {
	IsLocked *bool `json:"is_locked"`
	IsMuted  *bool `json:"is_muted"`
}

// ClipTrim is a trim window update. Offsets address the
// asset's own timeline, duration the track's.
type ClipTrim struct {
	AssetStartOffsetMs int64 `json:"asset_start_offset_ms"`
	AssetEndOffsetMs   int64 `json:"asset_end_offset_ms"`
	DurationMs         int64 `json:"duration_ms"`
}

type FileReference struct {
	Path string `json:"path"`
}
