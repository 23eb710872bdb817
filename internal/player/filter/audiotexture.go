package filter

import (
	"math"

	"github.com/alxayo/sxplayer-go/internal/bufpool"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// Audio-texture synthesis constants.
const (
	AudioNBits     = 10
	AudioNBSamples = 1 << AudioNBits // 1024
	AudioNBChans   = 2

	textureWidth = AudioNBSamples / 2       // 512
	textureRows  = 2 + 2 + 2*(AudioNBits-1) // wave + fft + 9 downscaled levels
	bytesPerRow  = textureWidth * 4         // float32 samples
)

// windowLUT is the Hann window applied before the DFT.
func windowLUT() []float32 {
	lut := make([]float32, AudioNBSamples)
	for i := range lut {
		lut[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(AudioNBSamples-1))))
	}
	return lut
}

// AudioTexturer turns AudioNBSamples-per-channel PCM frames into a textured
// video frame: two rows of raw waveform, two rows of full-resolution FFT
// magnitude, and 2*(AudioNBits-1) rows of progressively downscaled FFT
// magnitude, one pair of rows per channel at each level.
type AudioTexturer struct {
	window []float32
}

func NewAudioTexturer() *AudioTexturer {
	return &AudioTexturer{window: windowLUT()}
}

// textureBuf is a mutable view over one plane buffer addressed as rows of
// float32 samples, avoiding unsafe pointer casts.
type textureBuf []byte

func (b textureBuf) set(row, col int, v float32) {
	off := row*bytesPerRow + col*4
	bits := math.Float32bits(v)
	b[off] = byte(bits)
	b[off+1] = byte(bits >> 8)
	b[off+2] = byte(bits >> 16)
	b[off+3] = byte(bits >> 24)
}

func (b textureBuf) get(row, col int) float32 {
	off := row*bytesPerRow + col*4
	bits := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
	return math.Float32frombits(bits)
}

func floatPlane(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/4)
	for i := range out {
		off := i * 4
		bits := uint32(pcm[off]) | uint32(pcm[off+1])<<8 | uint32(pcm[off+2])<<16 | uint32(pcm[off+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// Texture converts one audio frame (Planes[ch] holding AudioNBSamples
// float32-LE samples for channel ch) into a single-plane video frame of
// textureRows rows by textureWidth columns, float32 samples per pixel.
func (t *AudioTexturer) Texture(audio *msg.Frame) *msg.Frame {
	plane := bufpool.Get(textureRows * bytesPerRow)
	tex := textureBuf(plane)

	for ch := 0; ch < AudioNBChans; ch++ {
		samples := floatPlane(audio.Planes[ch])
		for i := 0; i < textureWidth; i++ {
			tex.set(ch, i, (samples[textureWidth/2+i]+1)/2)
		}
	}

	for ch := 0; ch < AudioNBChans; ch++ {
		samples := floatPlane(audio.Planes[ch])
		mags := t.magnitudes(samples)
		for i, v := range mags {
			tex.set(AudioNBChans+ch, i, v)
		}
	}

	for level := 0; level < AudioNBits-1; level++ {
		for ch := 0; ch < AudioNBChans; ch++ {
			srcLine := (level+1)*AudioNBChans + ch
			dstLine := srcLine + AudioNBChans
			downscaleRow(tex, srcLine, dstLine, level)
		}
	}

	return &msg.Frame{
		PTS:         audio.PTS,
		Width:       textureWidth,
		Height:      textureRows,
		PixelFormat: "grayf32",
		Planes:      [][]byte{plane},
		Linesizes:   []int{bytesPerRow},
	}
}

// magnitudes runs a direct real-DFT (O(n^2), adequate at this size for a
// non-hot-path synthesis stage) over one channel's windowed samples and
// returns textureWidth magnitude bins.
func (t *AudioTexturer) magnitudes(samples []float32) []float32 {
	n := AudioNBSamples
	windowed := make([]float64, n)
	for i := 0; i < n; i++ {
		windowed[i] = float64(samples[i]) * float64(t.window[i])
	}

	scale := 1.0 / math.Sqrt(float64(n)/2+1)
	out := make([]float32, textureWidth)
	for k := 0; k < textureWidth; k++ {
		var re, im float64
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += windowed[i] * math.Cos(angle)
			im -= windowed[i] * math.Sin(angle)
		}
		out[k] = float32(math.Sqrt(re*re+im*im) * scale)
	}
	return out
}

// downscaleRow averages adjacent bin pairs from srcLine into dstLine,
// replicating each averaged value across the run of source bins it
// summarizes.
func downscaleRow(tex textureBuf, srcLine, dstLine, level int) {
	step := 1 << level
	run := step << 1
	nbDest := textureWidth / run
	for j := 0; j < nbDest; j++ {
		avg := (tex.get(srcLine, j*2*step) + tex.get(srcLine, (j*2+1)*step)) / 2
		for x := 0; x < run; x++ {
			tex.set(dstLine, j*run+x, avg)
		}
	}
}
