package main

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/texquad"
	"github.com/gogpu/texquad/backend"
	"github.com/gogpu/texquad/display"
	"github.com/gogpu/texquad/input"
)

// runWindow opens a window showing the TV output above the DRC output. The
// quad is driven by the first standard gamepad and the keyboard.
func runWindow(dev *backend.Device, hz int, opts []texquad.Option) error {
	outs, err := display.NewOffscreenOutputs(dev.Device, dev.Queue)
	if err != nil {
		return err
	}
	defer outs.Destroy()

	keys := &keyEvents{}
	kb := input.NewKeyboard()
	kb.Attach(keys)

	opts = append(opts,
		texquad.WithOutputs(outs),
		texquad.WithInput(input.Merge(gamepad{}, kb)))
	r, err := texquad.New(dev.Device, dev.Queue, opts...)
	if err != nil {
		return err
	}
	defer r.Destroy()

	g := &game{
		r:    r,
		keys: keys,
		tv:   outs.TV.(*display.Offscreen),
		drc:  outs.DRC.(*display.Offscreen),
	}
	ebiten.SetWindowTitle(fmt.Sprintf("texquad (%s)", dev.Name))
	ebiten.SetWindowSize(display.TVWidth/2, (display.TVHeight+display.DRCHeight)/2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(hz)
	return ebiten.RunGame(g)
}

type game struct {
	r    *texquad.Renderer
	keys *keyEvents

	tv, drc       *display.Offscreen
	tvImg, drcImg *ebiten.Image
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.keys.poll()
	if err := g.r.Draw(); err != nil {
		return err
	}
	var err error
	if g.tvImg, err = upload(g.tv, g.tvImg); err != nil {
		return err
	}
	g.drcImg, err = upload(g.drc, g.drcImg)
	return err
}

// upload copies an output's pixels into an ebiten image.
func upload(off *display.Offscreen, dst *ebiten.Image) (*ebiten.Image, error) {
	img, err := off.Readback()
	if err != nil {
		return dst, err
	}
	if dst == nil {
		dst = ebiten.NewImage(img.Rect.Dx(), img.Rect.Dy())
	}
	dst.WritePixels(img.Pix)
	return dst, nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.tvImg == nil || g.drcImg == nil {
		return
	}
	screen.DrawImage(g.tvImg, nil)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(display.TVWidth-display.DRCWidth)/2, display.TVHeight)
	screen.DrawImage(g.drcImg, op)
}

func (g *game) Layout(int, int) (int, int) {
	return display.TVWidth, display.TVHeight + display.DRCHeight
}

// gamepad reads the sticks of the first gamepad with a standard layout.
type gamepad struct{}

func (gamepad) Poll() input.State {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		axis := func(a ebiten.StandardGamepadAxis) float32 {
			return float32(ebiten.StandardGamepadAxisValue(id, a))
		}
		// Ebiten reports down as positive; sticks report up as positive.
		return input.State{
			Left: input.Stick{
				X: axis(ebiten.StandardGamepadAxisLeftStickHorizontal),
				Y: -axis(ebiten.StandardGamepadAxisLeftStickVertical),
			},
			Right: input.Stick{
				X: axis(ebiten.StandardGamepadAxisRightStickHorizontal),
				Y: -axis(ebiten.StandardGamepadAxisRightStickVertical),
			},
		}
	}
	return input.State{}
}

// keyEvents forwards ebiten key transitions as gpucontext key events.
type keyEvents struct {
	gpucontext.NullEventSource
	press, release func(gpucontext.Key, gpucontext.Modifiers)
}

func (k *keyEvents) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers))   { k.press = fn }
func (k *keyEvents) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) { k.release = fn }

var keyMap = map[ebiten.Key]gpucontext.Key{
	ebiten.KeyW:          gpucontext.KeyW,
	ebiten.KeyA:          gpucontext.KeyA,
	ebiten.KeyS:          gpucontext.KeyS,
	ebiten.KeyD:          gpucontext.KeyD,
	ebiten.KeyArrowUp:    gpucontext.KeyUp,
	ebiten.KeyArrowDown:  gpucontext.KeyDown,
	ebiten.KeyArrowLeft:  gpucontext.KeyLeft,
	ebiten.KeyArrowRight: gpucontext.KeyRight,
}

func (k *keyEvents) poll() {
	for ek, key := range keyMap {
		if k.press != nil && inpututil.IsKeyJustPressed(ek) {
			k.press(key, 0)
		}
		if k.release != nil && inpututil.IsKeyJustReleased(ek) {
			k.release(key, 0)
		}
	}
}
