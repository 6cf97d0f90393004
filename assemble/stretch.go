package assemble

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/olandir/abogen/engine"
)

// ResampleStretcher is the built-in stretch capability: linear resampling
// of PCM16 data to the target duration. Pitch shifts with the stretch
// ratio; callers wanting pitch preservation supply their own Stretcher.
type ResampleStretcher struct{}

// Stretch resamples a mono PCM16 buffer so it plays for target.
func (ResampleStretcher) Stretch(a *engine.Audio, target time.Duration) (*engine.Audio, error) {
	if a.Format != engine.FormatPCM16 || a.Channels != 1 {
		return nil, fmt.Errorf("stretch supports mono PCM16 only")
	}
	if target <= 0 {
		return nil, fmt.Errorf("non-positive stretch target %v", target)
	}
	if a.Duration == target {
		return a, nil
	}

	srcSamples := len(a.Data) / 2
	dstSamples := int(target.Seconds() * float64(a.SampleRate))
	if srcSamples == 0 || dstSamples == 0 {
		return engine.Silence(target, a.SampleRate), nil
	}

	data := make([]byte, dstSamples*2)
	step := float64(srcSamples-1) / float64(dstSamples)
	for i := 0; i < dstSamples; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		s0 := int16(binary.LittleEndian.Uint16(a.Data[j*2:]))
		s1 := s0
		if j+1 < srcSamples {
			s1 = int16(binary.LittleEndian.Uint16(a.Data[(j+1)*2:]))
		}
		sample := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		binary.LittleEndian.PutUint16(data[i*2:], uint16(sample))
	}
	return engine.NewPCM16(data, a.SampleRate), nil
}
