package types

// Transcript is the ordered output of a transcript source. Segments are
// expected sorted by start and non-overlapping; ingestion validates this
// before anything downstream consumes them.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

// Segment is one timestamped span of transcript text. Start/End are seconds
// from the beginning of the source media.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Moment is a scored transcript window considered a clip candidate.
// Score may be overwritten once by refinement; everything else is fixed at
// discovery time.
type Moment struct {
	ID       string   `json:"id"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Score    float64  `json:"score"`
	Reason   string   `json:"reason"`
	Text     string   `json:"text"`
	Emotions []string `json:"emotions"`
	Keywords []string `json:"keywords"`
}

// Ranking is one entry of the external ranking service's answer, addressed
// by 1-based position in the submitted candidate list.
type Ranking struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
}

// JobStatus is shared by both job kinds.
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// SourceKind describes how the ingested media arrived.
type SourceKind string

const (
	SourceURL         SourceKind = "url"
	SourceUploadVideo SourceKind = "upload-video"
	SourceUploadAudio SourceKind = "upload-audio"
)

// IngestionJob tracks one source-to-moments run. Mutated in place by the
// ingestion orchestrator; terminal exactly once.
type IngestionJob struct {
	ID          string           `json:"id"`
	Status      JobStatus        `json:"status"`
	Progress    int              `json:"progress"`
	CurrentStep string           `json:"current_step"`
	Result      *IngestionResult `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// IngestionResult is the payload of a completed ingestion job.
type IngestionResult struct {
	MediaPath  string     `json:"-"`
	Segments   []Segment  `json:"segments"`
	Moments    []Moment   `json:"moments"`
	Duration   float64    `json:"duration"`
	SourceKind SourceKind `json:"source_kind"`
}

// ClipJob tracks one render request over a selection of moments.
type ClipJob struct {
	ID             string          `json:"id"`
	Status         JobStatus       `json:"status"`
	Progress       int             `json:"progress"`
	CurrentStep    string          `json:"current_step"`
	TotalClips     int             `json:"total_clips"`
	ProcessedClips int             `json:"processed_clips"`
	Result         []ProcessedClip `json:"result,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// ProcessedClip is one element of a render result. A non-ready clip carries
// the failure message instead of file paths and stays in the sequence.
type ProcessedClip struct {
	ID            string  `json:"id"`
	VideoPath     string  `json:"-"`
	ThumbnailPath string  `json:"-"`
	Duration      float64 `json:"duration"`
	Moment        Moment  `json:"moment"`
	Ready         bool    `json:"ready"`
	Error         string  `json:"error,omitempty"`
}

// AspectFormat selects the reframing recipe for rendered clips.
type AspectFormat string

const (
	FormatVertical   AspectFormat = "9:16"
	FormatSquare     AspectFormat = "1:1"
	FormatHorizontal AspectFormat = "16:9"
)

// ClipOptions configures the per-clip stage chain. Each toggle is
// independent.
type ClipOptions struct {
	Format      AspectFormat `json:"format"`
	AddCaptions bool         `json:"add_captions"`
	AddEmojis   bool         `json:"add_emojis"`
	AddZoomPan  bool         `json:"add_zoom_pan"`
}
