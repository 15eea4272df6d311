package audio

import (
	"context"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// ExportEffect renders kind and writes it as 16-bit mono WAV
func ExportEffect(ctx context.Context, w io.WriteSeeker, kind EffectKind, rate int) error {
	if rate <= 0 {
		return fmt.Errorf("export %v: invalid sample rate %d", kind, rate)
	}
	buf, err := renderEffect(kind, beep.SampleRate(rate))
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	format := beep.Format{SampleRate: buf.SampleRate(), NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, buf.Streamer(), format); err != nil {
		return fmt.Errorf("encode %v: %w", kind, err)
	}
	return nil
}
