package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Engine plays one track at a time.
type Engine interface {
	Load(path string) error
	Play() error
	Busy() bool
	Stop() error
}

var errNotLoaded = errors.New("no track loaded")

// BeepEngine plays wav, mp3 and ogg/vorbis files through the beep
// speaker. Tracks at other sample rates are resampled to the speaker
// rate.
type BeepEngine struct {
	rate beep.SampleRate

	initOnce sync.Once
	initErr  error

	mu     sync.Mutex
	track  beep.StreamSeekCloser
	format beep.Format
	busy   atomic.Bool
}

func NewBeepEngine(rate beep.SampleRate) *BeepEngine {
	if rate <= 0 {
		rate = 44100
	}
	return &BeepEngine{rate: rate}
}

func (e *BeepEngine) init() error {
	e.initOnce.Do(func() {
		e.initErr = speaker.Init(e.rate, e.rate.N(time.Second/10))
	})
	return e.initErr
}

func (e *BeepEngine) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var (
		track  beep.StreamSeekCloser
		format beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		track, format, err = wav.Decode(f)
	case ".mp3":
		track, format, err = mp3.Decode(f)
	case ".ogg", ".oga":
		track, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported audio format %q", ext)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track != nil {
		e.track.Close()
	}
	e.track, e.format = track, format

	return nil
}

func (e *BeepEngine) Play() error {
	if err := e.init(); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return errNotLoaded
	}

	var s beep.Streamer = e.track
	if e.format.SampleRate != e.rate {
		s = beep.Resample(4, e.format.SampleRate, e.rate, s)
	}

	e.busy.Store(true)
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		e.busy.Store(false)
	})))

	return nil
}

func (e *BeepEngine) Busy() bool {
	return e.busy.Load()
}

// Stop is safe to call when nothing is playing.
func (e *BeepEngine) Stop() error {
	if e.initErr == nil && e.busy.Load() {
		speaker.Clear()
	}
	e.busy.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return nil
	}
	err := e.track.Close()
	e.track = nil
	return err
}
