package export

const (
	DefaultTitle     = "Video Diary"
	DefaultFrameRate = 30.0

	// maxReelName bounds the clip name written into event comments.
	maxReelName = 64
)

// Options controls the rendered edit list.
type Options struct {
	Title     string  `json:"title"`
	FrameRate float64 `json:"frame_rate"`
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.FrameRate <= 0 {
		o.FrameRate = DefaultFrameRate
	}
	return o
}
