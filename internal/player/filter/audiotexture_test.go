package filter

import (
	"math"
	"testing"

	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

func synthSamples(nbSamples int, freqHz, sampleRate float64) []byte {
	buf := make([]byte, nbSamples*4)
	for i := 0; i < nbSamples; i++ {
		v := float32(math.Sin(2 * math.Pi * freqHz * float64(i) / sampleRate))
		bits := math.Float32bits(v)
		off := i * 4
		buf[off] = byte(bits)
		buf[off+1] = byte(bits >> 8)
		buf[off+2] = byte(bits >> 16)
		buf[off+3] = byte(bits >> 24)
	}
	return buf
}

func TestAudioTexturerProducesExpectedShape(t *testing.T) {
	t.Parallel()
	tx := NewAudioTexturer()

	audio := &msg.Frame{
		PTS:          15876000,
		SampleFormat: "fltp",
		Planes: [][]byte{
			synthSamples(AudioNBSamples, 440, 44100),
			synthSamples(AudioNBSamples, 440, 44100),
		},
	}

	out := tx.Texture(audio)

	if out.Width != textureWidth || out.Height != textureRows {
		t.Fatalf("expected %dx%d texture, got %dx%d", textureWidth, textureRows, out.Width, out.Height)
	}
	if out.PixelFormat != "grayf32" {
		t.Fatalf("expected grayf32, got %s", out.PixelFormat)
	}
	if out.PTS != 15876000 {
		t.Fatalf("expected pts carried through unchanged, got %d", out.PTS)
	}
	if len(out.Planes) != 1 || len(out.Planes[0]) != textureRows*bytesPerRow {
		t.Fatalf("expected a single plane of %d bytes, got %d planes / %d bytes",
			textureRows*bytesPerRow, len(out.Planes), len(out.Planes[0]))
	}
}

func TestAudioTexturerWaveformRowsAreNotAllZero(t *testing.T) {
	t.Parallel()
	tx := NewAudioTexturer()

	audio := &msg.Frame{
		SampleFormat: "fltp",
		Planes: [][]byte{
			synthSamples(AudioNBSamples, 1000, 44100),
			synthSamples(AudioNBSamples, 1000, 44100),
		},
	}

	out := tx.Texture(audio)
	tex := textureBuf(out.Planes[0])

	nonZero := false
	for col := 0; col < textureWidth; col++ {
		if tex.get(0, col) != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected waveform row to carry synthesized sample data, got all zero (aliasing regression)")
	}
}

func TestAudioTexturerDownscaleRowsReplicateAveragedValues(t *testing.T) {
	t.Parallel()
	tex := make(textureBuf, textureRows*bytesPerRow)
	for col := 0; col < textureWidth; col++ {
		tex.set(2, col, float32(col))
	}

	downscaleRow(tex, 2, 4, 0)

	want := (tex.get(2, 0) + tex.get(2, 1)) / 2
	if got := tex.get(4, 0); got != want {
		t.Fatalf("expected downscaled bin 0 = %v, got %v", want, got)
	}
	if got := tex.get(4, 1); got != want {
		t.Fatalf("expected run of averaged value replicated at bin 1, got %v want %v", got, want)
	}
}

func TestAudioTexturerMagnitudesPeakNearFundamental(t *testing.T) {
	t.Parallel()
	tx := NewAudioTexturer()
	const sampleRate = 44100.0
	const freq = 1000.0
	samples := floatPlane(synthSamples(AudioNBSamples, freq, sampleRate))

	mags := tx.magnitudes(samples)

	peakBin := 0
	for i, v := range mags {
		if v > mags[peakBin] {
			peakBin = i
		}
	}
	nbSamples := AudioNBSamples
	expectedBin := int(freq * float64(nbSamples) / sampleRate)
	if diff := peakBin - expectedBin; diff < -2 || diff > 2 {
		t.Fatalf("expected peak magnitude near bin %d, got bin %d", expectedBin, peakBin)
	}
}
