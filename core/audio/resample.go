package audio

import "encoding/binary"

// Downsample reduces samples from sourceRate to targetRate by averaging each
// span of input samples that maps onto one output sample. Averaging is good
// enough for voice; a proper FIR filter is not worth the cost here.
//
// When sourceRate <= targetRate the input is returned unchanged: upsampling
// is not attempted and the degraded quality is accepted.
func Downsample(samples []float32, sourceRate, targetRate int) []float32 {
	if sourceRate <= targetRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(sourceRate) / float64(targetRate)
	outLen := int(float64(len(samples))/ratio + 0.5)
	if outLen == 0 {
		outLen = 1
	}

	out := make([]float32, 0, outLen)
	for i := 0; i < outLen; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if start >= len(samples) {
			break
		}
		if end > len(samples) {
			end = len(samples)
		}
		if end == start {
			end = start + 1
		}

		var sum float64
		for _, s := range samples[start:end] {
			sum += float64(s)
		}
		out = append(out, float32(sum/float64(end-start)))
	}

	return out
}

// FloatToPCM16 converts float samples in [-1, 1] to little-endian 16-bit
// signed PCM. Out-of-range samples are clamped before scaling so they
// saturate instead of wrapping around.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}

		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// PCM16ToFloat is the inverse of [FloatToPCM16]. Trailing odd bytes are
// ignored.
func PCM16ToFloat(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(v) / 32767
	}
	return out
}
