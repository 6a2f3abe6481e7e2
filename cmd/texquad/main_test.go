package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/texquad/backend"
	"github.com/gogpu/texquad/display"
)

func TestTextureOptions(t *testing.T) {
	if n := len(textureOptions("romfs:/texture.tga")); n != 2 {
		t.Errorf("romfs path: %d options, want 2", n)
	}
	if n := len(textureOptions("/tmp/brick.png")); n != 3 {
		t.Errorf("host path: %d options, want 3", n)
	}
}

func TestDemoPadLoops(t *testing.T) {
	pad := demoPad()
	first := pad.Poll()
	for i := 1; i < 120; i++ {
		pad.Poll()
	}
	if got := pad.Poll(); got != first {
		t.Errorf("poll 121 = %+v, want the first state %+v", got, first)
	}
}

func TestRunHeadless(t *testing.T) {
	dev, err := backend.Open(backend.BackendNoop)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	dir := t.TempDir()
	if err := runHeadless(context.Background(), dev, 3, time.Millisecond, dir, nil); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}

	want := map[string][2]int{
		display.NameTV:  {display.TVWidth, display.TVHeight},
		display.NameDRC: {display.DRCWidth, display.DRCHeight},
	}
	for name, size := range want {
		f, err := os.Open(filepath.Join(dir, name+".png"))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if cfg.Width != size[0] || cfg.Height != size[1] {
			t.Errorf("%s = %dx%d, want %dx%d", name, cfg.Width, cfg.Height, size[0], size[1])
		}
	}
}

func TestRunHeadlessCanceled(t *testing.T) {
	dev, err := backend.Open(backend.BackendNoop)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runHeadless(ctx, dev, 1000, time.Hour, t.TempDir(), nil); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
}
