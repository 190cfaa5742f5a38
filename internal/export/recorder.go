package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shirtforge/internal/logging"
)

// Result describes a finished recording.
type Result struct {
	Dir     string
	Frames  int
	// Skipped counts frames dropped because encoding fell behind.
	Skipped int
	Err     error
}

// Recorder captures a fixed-length frame sequence. The owner of the
// frames (usually the render loop) calls Offer every frame; the recorder
// grabs a frame when one is due and stops itself once the duration is up.
// Frames are encoded on a background goroutine.
type Recorder struct {
	mu       sync.Mutex
	busy     bool
	interval time.Duration
	deadline time.Time
	next     time.Time
	frames   int
	cur      *session

	// encode writes one frame; nil means PNG via writeImage.
	encode func(path string, img image.Image) error
}

// session is one recording. err and skipped are set before jobs is closed.
type session struct {
	dir     string
	jobs    chan frameJob
	done    chan Result
	encode  func(path string, img image.Image) error
	err     error
	skipped int
}

type frameJob struct {
	path string
	img  image.Image
}

// Start begins a recording into dir. It fails with ErrBusy while another
// recording is running.
func (r *Recorder) Start(dir string, duration time.Duration, fps int, now time.Time) error {
	if fps <= 0 || duration <= 0 {
		return fmt.Errorf("export: bad recording length %v at %d fps", duration, fps)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return ErrBusy
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	r.busy = true
	r.interval = time.Second / time.Duration(fps)
	r.deadline = now.Add(duration)
	r.next = now
	r.frames = 0
	encode := r.encode
	if encode == nil {
		encode = func(path string, img image.Image) error { return writeImage(path, img, PNG) }
	}
	r.cur = &session{
		dir:    dir,
		jobs:   make(chan frameJob, fps),
		done:   make(chan Result, 1),
		encode: encode,
	}
	go r.cur.write()
	logging.L().Info("export: recording started", "dir", dir, "duration", duration, "fps", fps)
	return nil
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// Offer captures a frame via grab if one is due at now. Once now passes
// the deadline the recording ends and grab is not called. Offer never
// waits on the encoder: a due frame is skipped while the queue is full.
func (r *Recorder) Offer(now time.Time, grab func() (image.Image, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.busy {
		return
	}
	if !now.Before(r.deadline) {
		r.stopLocked()
		return
	}
	if now.Before(r.next) {
		return
	}
	if len(r.cur.jobs) == cap(r.cur.jobs) {
		r.cur.skipped++
		r.advance(now)
		return
	}
	img, err := grab()
	if err != nil {
		r.cur.err = fmt.Errorf("export: grab frame %d: %w", r.frames, err)
		r.stopLocked()
		return
	}
	r.cur.jobs <- frameJob{
		path: filepath.Join(r.cur.dir, fmt.Sprintf("frame_%05d.png", r.frames)),
		img:  img,
	}
	r.frames++
	r.advance(now)
}

func (r *Recorder) advance(now time.Time) {
	r.next = r.next.Add(r.interval)
	if r.next.Before(now) {
		r.next = now.Add(r.interval)
	}
}

// Stop ends the recording early.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		r.stopLocked()
	}
}

func (r *Recorder) stopLocked() {
	r.busy = false
	close(r.cur.jobs)
}

// Done delivers the result once the last frame is written. It is nil
// before the first Start.
func (r *Recorder) Done() <-chan Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == nil {
		return nil
	}
	return r.cur.done
}

func (s *session) write() {
	res := Result{Dir: s.dir}
	var writeErr error
	for j := range s.jobs {
		if writeErr != nil {
			continue
		}
		if err := s.encode(j.path, j.img); err != nil {
			writeErr = err
			continue
		}
		res.Frames++
	}
	res.Skipped = s.skipped
	res.Err = s.err
	if res.Err == nil {
		res.Err = writeErr
	}
	if res.Err != nil {
		logging.L().Error("export: recording failed", "err", res.Err)
	} else {
		logging.L().Info("export: recording finished", "dir", res.Dir, "frames", res.Frames, "skipped", res.Skipped)
	}
	s.done <- res
}

// FrameSource produces frames for Record.
type FrameSource interface {
	Frame() (image.Image, error)
}

// Record runs a whole recording on a ticker, for callers without a render
// loop. It returns when the fixed duration has elapsed or ctx is done.
func Record(ctx context.Context, rec *Recorder, src FrameSource, dir string, duration time.Duration, fps int) (Result, error) {
	if err := rec.Start(dir, duration, fps, time.Now()); err != nil {
		return Result{}, err
	}
	done := rec.Done()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	timer := time.NewTimer(duration)
	defer timer.Stop()

	rec.Offer(time.Now(), src.Frame)
	for rec.Recording() {
		select {
		case <-ctx.Done():
			rec.Stop()
		case <-timer.C:
			rec.Stop()
		case now := <-ticker.C:
			rec.Offer(now, src.Frame)
		}
	}
	res := <-done
	return res, res.Err
}
