package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/shape-features-mcp/internal/colorseg"
	"github.com/ironsheep/shape-features-mcp/internal/config"
	"github.com/ironsheep/shape-features-mcp/internal/geometry"
	"github.com/ironsheep/shape-features-mcp/internal/imaging"
	"github.com/ironsheep/shape-features-mcp/internal/logging"
	"github.com/ironsheep/shape-features-mcp/internal/render"
	"github.com/ironsheep/shape-features-mcp/internal/report"
	"github.com/ironsheep/shape-features-mcp/internal/server"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
	"github.com/ironsheep/shape-features-mcp/internal/texture"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("shape-features-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log := logging.NewConsole(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failed run to the process exit status: 3 when the input
// image could not be read, 1 otherwise.
func exitCode(err error) int {
	var le *shape.LoadError
	if errors.As(err, &le) {
		return 3
	}
	return 1
}

// openImage reads an image for the companion commands, reporting failures
// the same way the shape pipeline does.
func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &shape.LoadError{Path: path, Err: err}
	}
	return img, nil
}

func printHelp() {
	fmt.Println("shape-features-mcp - MCP server for shape feature extraction")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  shape-features-mcp                                   Serve MCP over stdin/stdout")
	fmt.Println("  shape-features-mcp analyze <image> [annotated] [plot] Print shape features")
	fmt.Println("  shape-features-mcp distances <image> [overlay]       Print centroid distances")
	fmt.Println("  shape-features-mcp texture <image>                   Print GLCM texture features")
	fmt.Println("  shape-features-mcp color <image> [segmented]         Isolate a hue band")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %-24s Log level: debug, info, warn, error (default info)\n", logging.EnvLevel)
	fmt.Printf("  %-24s YAML configuration file\n", config.EnvConfigFile)
	fmt.Printf("  %-24s Smallest object area in px (default 30)\n", config.EnvMinArea)
	fmt.Printf("  %-24s Closing disk radius (default 2)\n", config.EnvCloseRadius)
	fmt.Printf("  %-24s Concurrent object measurements (default CPU count)\n", config.EnvWorkers)
	fmt.Printf("  %-24s Pixels per millimetre for distances (default 1.4798)\n", config.EnvResolution)
	fmt.Println()
	fmt.Println("Without a command the server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger, args []string) error {
	if len(args) == 0 {
		log.Debug().Str("build_time", BuildTime).Str("commit", GitCommit).Msg("starting")
		srv, err := server.New(cfg, server.WithLogger(log), server.WithVersion(Version))
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	}

	cmd, rest := args[0], args[1:]
	if len(rest) == 0 {
		return fmt.Errorf("%s: missing image path", cmd)
	}
	switch cmd {
	case "analyze":
		return analyze(ctx, cfg, log, rest)
	case "distances":
		return distances(cfg, rest)
	case "texture":
		return textureFeatures(cfg, rest)
	case "color":
		return colorSegment(cfg, rest)
	default:
		return fmt.Errorf("unknown command %q, see --help", cmd)
	}
}

func analyze(ctx context.Context, cfg config.Config, log zerolog.Logger, args []string) error {
	cache := imaging.NewImageCache()
	p, err := shape.New(cfg.Shape,
		shape.WithLogger(logging.Component(log, "pipeline")),
		shape.WithLoader(cache),
	)
	if err != nil {
		return err
	}

	path := args[0]
	res, err := p.RunFile(ctx, path)
	if err != nil {
		return err
	}
	if err := report.WriteShapes(os.Stdout, filepath.Base(path), res.Records); err != nil {
		return err
	}

	if len(args) > 1 {
		img, err := cache.Load(path)
		if err != nil {
			return err
		}
		if err := imaging.Save(render.Annotate(img, res.Records, render.DefaultOptions()), args[1]); err != nil {
			return err
		}
		log.Info().Str("path", args[1]).Msg("annotated image saved")
	}
	if len(args) > 2 {
		if err := report.SaveFeaturePlot(res.Records, args[2]); err != nil {
			return err
		}
		log.Info().Str("path", args[2]).Msg("feature plot saved")
	}
	return nil
}

func distances(cfg config.Config, args []string) error {
	img, err := openImage(args[0])
	if err != nil {
		return err
	}
	res, err := geometry.MeasureDistances(imaging.Gray(img), cfg.Geometry)
	if err != nil {
		return err
	}
	if err := report.WriteDistances(os.Stdout, filepath.Base(args[0]), res); err != nil {
		return err
	}
	if len(args) > 1 {
		return imaging.Save(render.Distances(img, res), args[1])
	}
	return nil
}

func textureFeatures(cfg config.Config, args []string) error {
	img, err := openImage(args[0])
	if err != nil {
		return err
	}
	res, err := texture.Analyze(imaging.Gray(img), cfg.Texture)
	if err != nil {
		return err
	}
	return report.WriteTexture(os.Stdout, filepath.Base(args[0]), res)
}

func colorSegment(cfg config.Config, args []string) error {
	img, err := openImage(args[0])
	if err != nil {
		return err
	}
	res, err := colorseg.Segment(img, cfg.Color)
	if err != nil {
		return err
	}
	if err := report.WriteColor(os.Stdout, filepath.Base(args[0]), res); err != nil {
		return err
	}
	if len(args) > 1 {
		return imaging.Save(res.Isolated, args[1])
	}
	return nil
}
