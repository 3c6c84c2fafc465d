// Package audioconv turns audio files into the 16 kHz mono float32 PCM
// the transcribers take, and back into WAV for upload.
package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const TargetRate = 16000

type Options struct {
	MaxSamples int // 0 = no limit
}

// DecodeFile reads wav, mp3 or ogg (vorbis or opus). Unknown extensions
// are sniffed by magic bytes.
func DecodeFile(path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kind := strings.ToLower(filepath.Ext(path))
	switch kind {
	case ".wav", ".mp3", ".ogg", ".oga", ".opus":
	default:
		magic, _ := bufio.NewReader(f).Peek(4)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		switch string(magic) {
		case "RIFF":
			kind = ".wav"
		case "OggS":
			kind = ".ogg"
		default:
			return nil, fmt.Errorf("unsupported format: %s", path)
		}
	}

	var (
		pcm  []float32
		rate int
	)
	switch kind {
	case ".wav":
		pcm, rate, err = decodeWAV(f)
	case ".mp3":
		pcm, rate, err = decodeMP3(f)
	case ".opus":
		pcm, rate, err = decodeOpus(f)
	default:
		pcm, rate, err = decodeVorbis(f)
		if err != nil {
			if _, serr := f.Seek(0, io.SeekStart); serr != nil {
				return nil, serr
			}
			pcm, rate, err = decodeOpus(f)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	pcm = Resample(pcm, rate, TargetRate)
	if opt.MaxSamples > 0 && len(pcm) > opt.MaxSamples {
		pcm = pcm[:opt.MaxSamples]
	}
	return pcm, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))
	x := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		x[i] = float32(clamp(float64(v) * scale))
	}

	ch, rate := 1, int(dec.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			ch = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	return Downmix(x, ch), rate, nil
}

func decodeMP3(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, err
	}
	samples := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return nil, 0, err
	}
	// go-mp3 always yields interleaved stereo
	return Downmix(fromInt16(samples), 2), dec.SampleRate(), nil
}

func decodeVorbis(r io.Reader) ([]float32, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, 0, errors.New("invalid ogg/vorbis stream")
	}
	return Downmix(pcm, format.Channels), format.SampleRate, nil
}

func decodeOpus(r io.ReadSeeker) ([]float32, int, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	// opus always decodes at 48 kHz
	var (
		out []float32
		buf = make([]int16, 24000*ch)
	)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			out = append(out, fromInt16(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return Downmix(out, ch), 48000, nil
}

// EncodeWAV writes mono float32 samples as 16-bit PCM WAV.
func EncodeWAV(pcm []float32, rate int) ([]byte, error) {
	data := make([]int, len(pcm))
	for i, v := range pcm {
		data[i] = int(math.Round(clamp(float64(v)) * 32767))
	}

	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// Downmix averages interleaved channels into mono.
func Downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	out := make([]float32, len(in)/channels)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// Resample converts between rates by linear interpolation.
func Resample(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	out := make([]float32, int(math.Ceil(float64(len(in))*ratio)))
	last := len(in) - 1
	for i := range out {
		src := float64(i) / ratio
		i0 := int(src)
		if i0 >= last {
			out[i] = in[last]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i0+1]*a
	}
	return out
}

func fromInt16(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v) / 32768
	}
	return out
}

func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// writeSeeker is an in-memory io.WriteSeeker for the wav encoder,
// which patches its header sizes after the data is written.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = w.pos
	case io.SeekEnd:
		base = len(w.buf)
	default:
		return 0, errors.New("invalid whence")
	}
	pos := base + int(offset)
	if pos < 0 {
		return 0, errors.New("negative position")
	}
	w.pos = pos
	return int64(pos), nil
}
