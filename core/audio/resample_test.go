package audio

import (
	"encoding/binary"
	"testing"
)

func TestDownsampleAveragesEachSpan(t *testing.T) {
	in := []float32{0.0, 0.3, 0.6, 0.9, 0.9, 0.9, -0.3, -0.6, -0.9}

	out := Downsample(in, 48000, 16000)

	if len(out) != 3 {
		t.Fatalf("expected 3 output samples for 9 inputs at 3:1, got %d", len(out))
	}

	want := []float32{0.3, 0.9, -0.6}
	for i := range want {
		if diff := out[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: expected mean %f, got %f", i, want[i], out[i])
		}
	}
}

func TestDownsampleOutputLengthTracksRatio(t *testing.T) {
	in := make([]float32, 480)

	out := Downsample(in, 48000, 16000)

	if len(out) != 160 {
		t.Fatalf("expected 160 output samples for 480 inputs at 48k->16k, got %d", len(out))
	}
}

func TestDownsamplePassesThroughLowerRates(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}

	out := Downsample(in, 8000, 16000)

	if len(out) != len(in) {
		t.Fatalf("expected pass-through for sub-target rate, got %d samples", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: expected untouched value %f, got %f", i, in[i], out[i])
		}
	}
}

func TestFloatToPCM16ClampsOutOfRangeSamples(t *testing.T) {
	out := FloatToPCM16([]float32{1.5, -1.5})

	high := int16(binary.LittleEndian.Uint16(out[0:]))
	low := int16(binary.LittleEndian.Uint16(out[2:]))

	if high != 32767 {
		t.Fatalf("expected over-range sample to clamp to 32767, got %d", high)
	}
	if low != -32767 {
		t.Fatalf("expected under-range sample to clamp to -32767, got %d", low)
	}
}

func TestFloatToPCM16RoundTripsThroughPCM16ToFloat(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1}

	got := PCM16ToFloat(FloatToPCM16(in))

	if len(got) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(got))
	}
	for i := range in {
		if diff := got[i] - in[i]; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("sample %d: expected %f, got %f", i, in[i], got[i])
		}
	}
}

func TestMIMETypeIncludesSampleRate(t *testing.T) {
	info := EncodingInfo{SampleRate: 16000, Format: EncodingLinear16}

	if got := info.MIMEType(); got != "audio/pcm;rate=16000" {
		t.Fatalf("unexpected mime type %q", got)
	}
}
