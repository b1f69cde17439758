package model

import "time"

// AnchorSegment is one spoken segment of a briefing
type AnchorSegment struct {
	Text    string  `json:"text"`
	Mood    string  `json:"mood"`
	View    string  `json:"view"`
	Gesture string  `json:"gesture,omitempty"`
	Voice   string  `json:"voice"`
	Speed   float64 `json:"speed"`
	Delay   int     `json:"delay"` // Milliseconds before the next segment
}

// AnchorScript is a complete briefing ready for the broadcast studio
type AnchorScript struct {
	Topic        string          `json:"topic"`
	Segments     []AnchorSegment `json:"segments"`
	SourcesCited []string        `json:"sources_cited"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// Briefing durations accepted by the script writers
const (
	DurationShort    = "short"
	DurationMedium   = "medium"
	DurationDetailed = "detailed"
)

// Segment defaults used by the studio
const (
	DefaultVoice = "af_bella"
	DefaultMood  = "neutral"
	DefaultView  = "upper"
	DefaultDelay = 800
)

// JobStatus is the lifecycle state of a broadcast job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRendering JobStatus = "rendering"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transitions are expected
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// BriefingJob tracks a briefing video rendered by the broadcast studio
type BriefingJob struct {
	ID          string        `json:"id"`        // Dashboard-side job ID
	RemoteID    string        `json:"remote_id"` // Studio-side job ID
	Topic       string        `json:"topic"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"` // 0-100
	VideoURL    string        `json:"video_url,omitempty"`
	Error       string        `json:"error,omitempty"`
	Script      *AnchorScript `json:"script,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
