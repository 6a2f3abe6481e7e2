package main

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/texquad"
	"github.com/gogpu/texquad/backend"
	"github.com/gogpu/texquad/display"
	"github.com/gogpu/texquad/input"
)

// demoPad turns right while walking forward, then looks up and strafes.
func demoPad() *input.Script {
	var states []input.State
	for range 60 {
		states = append(states, input.State{
			Left:  input.Stick{Y: 0.2},
			Right: input.Stick{X: 0.5},
		})
	}
	for range 60 {
		states = append(states, input.State{
			Left:  input.Stick{X: -0.2},
			Right: input.Stick{Y: 0.25},
		})
	}
	s := input.NewScript(states...)
	s.Loop = true
	return s
}

// runHeadless draws frames offscreen at the given period and writes the
// final TV and DRC images to outDir.
func runHeadless(ctx context.Context, dev *backend.Device, frames int, period time.Duration, outDir string, opts []texquad.Option) error {
	outs, err := display.NewOffscreenOutputs(dev.Device, dev.Queue)
	if err != nil {
		return err
	}
	defer outs.Destroy()

	opts = append(opts, texquad.WithOutputs(outs), texquad.WithInput(demoPad()))
	r, err := texquad.New(dev.Device, dev.Queue, opts...)
	if err != nil {
		return err
	}
	defer r.Destroy()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := time.Now()
loop:
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			log.Printf("Interrupted after %d frames", r.Frames())
			break loop
		case <-ticker.C:
		}
		if err := r.Draw(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	log.Printf("Rendered %d frames in %v", r.Frames(), time.Since(start).Round(time.Millisecond))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, t := range outs.All() {
		off, ok := t.(*display.Offscreen)
		if !ok {
			continue
		}
		if err := savePNG(off, filepath.Join(outDir, off.Name()+".png")); err != nil {
			return err
		}
	}
	return nil
}

func savePNG(off *display.Offscreen, path string) error {
	img, err := off.Readback()
	if err != nil {
		return fmt.Errorf("read back %s: %w", off.Name(), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Saved %s (%dx%d)", path, img.Rect.Dx(), img.Rect.Dy())
	return nil
}
