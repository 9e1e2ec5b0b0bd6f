package utils

import (
	"log"
	"time"

	"github.com/loov/hrtime"
)

// FrameStats logs the frame rate every interval.
type FrameStats struct {
	interval time.Duration
	now      func() time.Duration

	windowStart time.Duration
	frames      int
}

func NewFrameStats(interval time.Duration) *FrameStats {
	return newFrameStats(interval, hrtime.Now)
}

func newFrameStats(interval time.Duration, now func() time.Duration) *FrameStats {
	return &FrameStats{
		interval:    interval,
		now:         now,
		windowStart: now(),
	}
}

// Frame records one presented frame. When the interval has elapsed it returns the frame
// rate and mean frame time over the interval and starts a new one.
func (s *FrameStats) Frame() (fps float64, frameTime time.Duration, report bool) {
	if s.interval <= 0 {
		return 0, 0, false
	}

	s.frames++
	elapsed := s.now() - s.windowStart
	if elapsed < s.interval {
		return 0, 0, false
	}

	fps = float64(s.frames) / elapsed.Seconds()
	frameTime = elapsed / time.Duration(s.frames)

	s.windowStart += elapsed
	s.frames = 0

	return fps, frameTime, true
}

func (s *FrameStats) LogFrame() {
	fps, frameTime, report := s.Frame()
	if report {
		log.Printf("%.1f fps, %s per frame", fps, frameTime)
	}
}
