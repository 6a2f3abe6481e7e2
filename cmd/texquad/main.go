// Command texquad draws the textured quad demo, either in a window or
// headless for a fixed number of frames.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/texquad"
	"github.com/gogpu/texquad/asset"
	"github.com/gogpu/texquad/backend"
)

func main() {
	var (
		headless = flag.Bool("headless", false, "render offscreen and write PNG files")
		frames   = flag.Int("frames", 120, "frames to render in headless mode")
		hz       = flag.Int("hz", 60, "frame rate")
		backName = flag.String("backend", "", "HAL backend ("+strings.Join(backend.Available(), ", ")+")")
		texture  = flag.String("texture", texquad.DefaultTexturePath, "texture path, romfs:/ or a file")
		outDir   = flag.String("out", ".", "output directory for headless PNG files")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		texquad.SetLogger(l)
		backend.SetLogger(l)
	}
	if *hz <= 0 {
		log.Fatalf("invalid -hz %d", *hz)
	}

	dev, err := backend.Open(*backName)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Close()
	log.Printf("Using %s backend: %s", dev.Name, dev.Info.Name)

	opts := textureOptions(*texture)

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = runHeadless(ctx, dev, *frames, time.Second/time.Duration(*hz), *outDir, opts)
	} else {
		err = runWindow(dev, *hz, opts)
	}
	if err != nil {
		log.Fatalf("texquad: %v", err)
	}
}

// textureOptions maps the -texture flag to renderer options. Paths outside
// romfs:/ are read from the host file system. Textures larger than the
// device's 2D limit are scaled down.
func textureOptions(path string) []texquad.Option {
	opts := []texquad.Option{
		texquad.WithMaxTextureDimension(int(gputypes.DefaultLimits().MaxTextureDimension2D)),
	}
	if strings.HasPrefix(path, asset.Scheme) {
		return append(opts, texquad.WithTexturePath(path))
	}
	return append(opts,
		texquad.WithAssetFS(os.DirFS(filepath.Dir(path))),
		texquad.WithTexturePath(filepath.Base(path)))
}
