package pipeline

import (
	"context"

	"github.com/olandir/abogen/engine"
	"github.com/olandir/abogen/voice"
)

// driver invokes the external TTS engine per segment, resolving voice
// handles through the job's conversion state. Engine failures are fatal to
// the chapter being produced and are surfaced with chapter/segment context;
// they are never retried here.
type driver struct {
	eng   engine.Engine
	state *conversionState
	rate  float64
}

func (d *driver) synthesize(ctx context.Context, chapter string, segment int, v voice.Descriptor, text string) (*engine.Audio, error) {
	h, err := d.state.handleFor(ctx, d.eng, v)
	if err != nil {
		return nil, segmentErr("tts", chapter, segment, err)
	}
	audio, err := d.eng.Synthesize(ctx, text, h, d.rate)
	if err != nil {
		return nil, segmentErr("tts", chapter, segment, err)
	}
	return audio, nil
}
