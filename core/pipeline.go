package agent

import (
	"context"
	"fmt"

	"github.com/aispirelabs/acharya-core/core/audio"
)

// audioPipeline moves audio between the device and the realtime endpoint.
// Upstream: capture frames are downsampled to the wire rate, converted to
// PCM16 and sent. Downstream: received chunks are queued for in-order
// playback.
type audioPipeline struct {
	device      AudioDevice
	session     RealtimeSession
	transcriber Transcriber
	targetRate  int
}

func newAudioPipeline(device AudioDevice, session RealtimeSession, transcriber Transcriber, targetRate int) *audioPipeline {
	if targetRate <= 0 {
		targetRate = audio.TargetSampleRate
	}
	return &audioPipeline{
		device:      device,
		session:     session,
		transcriber: transcriber,
		targetRate:  targetRate,
	}
}

func (p *audioPipeline) Start(ctx context.Context) error {
	sourceRate := p.device.CaptureEncodingInfo().SampleRate

	err := p.device.StartCapture(ctx, func(samples []float32) {
		downsampled := audio.Downsample(samples, sourceRate, p.targetRate)
		pcm := audio.FloatToPCM16(downsampled)
		if err := p.session.SendAudio(pcm); err != nil {
			logger.Error("Failed to send captured audio", "error", err)
		}
		if p.transcriber != nil {
			if err := p.transcriber.SendAudio(pcm); err != nil {
				logger.Error("Failed to send audio to transcriber", "error", err)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}
	return nil
}

func (p *audioPipeline) Play(pcm []byte) error {
	return p.device.Enqueue(pcm)
}

func (p *audioPipeline) Interrupt() {
	p.device.ClearBuffer()
}

func (p *audioPipeline) IsSpeaking() bool {
	return p.device.IsSpeaking()
}

// Stop tears the pipeline down unconditionally; capture and playback are
// both stopped even if one of them fails.
func (p *audioPipeline) Stop() error {
	err := p.device.StopCapture()
	p.device.ClearBuffer()
	if err != nil {
		return fmt.Errorf("failed to stop audio capture: %w", err)
	}
	return nil
}
