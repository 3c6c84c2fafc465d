package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

// ErrNoOnset is returned when nobody starts speaking within the onset
// window.
var ErrNoOnset = errors.New("no speech onset")

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms
	frameDur   = 20 * time.Millisecond
)

type RecorderConfig struct {
	SilenceRMS float64       // frames above this count as speech
	Trailing   time.Duration // silence that ends a phrase
	MaxPhrase  time.Duration
}

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		SilenceRMS: 0.015,
		Trailing:   600 * time.Millisecond,
		MaxPhrase:  10 * time.Second,
	}
}

type Recorder struct {
	cfg RecorderConfig
}

func NewRecorder(cfg RecorderConfig) *Recorder { return &Recorder{cfg: cfg} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record captures one phrase from the default input device as 16 kHz
// mono PCM. It gives up with ErrNoOnset when no frame crosses the
// speech threshold within onset.
func (r *Recorder) Record(ctx context.Context, onset time.Duration) ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	seg := newSegmenter(r.cfg, onset)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}

		done, err := seg.push(buf)
		if err != nil {
			return nil, err
		}
		if done {
			return seg.out, nil
		}
	}
}

// segmenter decides, frame by frame, where a phrase starts and ends.
type segmenter struct {
	cfg           RecorderConfig
	onsetFrames   int
	trailFrames   int
	maxFrames     int
	waited        int
	speaking      bool
	silenceFrames int
	spoken        int
	out           []float32
}

func newSegmenter(cfg RecorderConfig, onset time.Duration) *segmenter {
	frames := func(d time.Duration) int {
		n := int(d / frameDur)
		if n < 1 {
			n = 1
		}
		return n
	}
	return &segmenter{
		cfg:         cfg,
		onsetFrames: frames(onset),
		trailFrames: frames(cfg.Trailing),
		maxFrames:   frames(cfg.MaxPhrase),
		out:         make([]float32, 0, SampleRate*3),
	}
}

// push consumes one frame. It reports true once the phrase is complete.
func (s *segmenter) push(frame []float32) (bool, error) {
	loud := frameRMS(frame) > s.cfg.SilenceRMS

	if !s.speaking {
		if !loud {
			s.waited++
			if s.waited >= s.onsetFrames {
				return false, ErrNoOnset
			}
			return false, nil
		}
		s.speaking = true
	}

	s.out = append(s.out, frame...)
	s.spoken++

	if loud {
		s.silenceFrames = 0
	} else {
		s.silenceFrames++
		if s.silenceFrames >= s.trailFrames {
			return true, nil
		}
	}

	return s.spoken >= s.maxFrames, nil
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
