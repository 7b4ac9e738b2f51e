package shape

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
	"github.com/ironsheep/shape-features-mcp/internal/imaging"
	"github.com/ironsheep/shape-features-mcp/internal/morph"
)

// ObjectRecord is the measured and classified description of one object.
// Index is the 1-based position of the object's contour in discovery order.
// Skipped contours keep their number, so indices may have gaps.
type ObjectRecord struct {
	Index int `json:"index"`
	Measurement
	Label   Label           `json:"label"`
	Contour contour.Contour `json:"-"`
}

// Result holds the records of one pipeline run together with the
// intermediate rasters it produced.
type Result struct {
	RunID     string         `json:"run_id"`
	Threshold uint8          `json:"threshold"`
	Records   []ObjectRecord `json:"records"`
	Skipped   int            `json:"skipped"`

	Gray     *image.Gray `json:"-"`
	Binary   *image.Gray `json:"-"`
	Filtered *image.Gray `json:"-"`
	Closed   *image.Gray `json:"-"`
	Filled   *image.Gray `json:"-"`

	// Mask is the solid rasterisation of every recorded object's outer
	// contour.
	Mask *image.Gray `json:"-"`
}

// Record returns the record numbered index.
func (r *Result) Record(index int) (ObjectRecord, bool) {
	for _, rec := range r.Records {
		if rec.Index == index {
			return rec, true
		}
	}
	return ObjectRecord{}, false
}

// Loader reads an image from a path.
type Loader interface {
	Load(path string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (image.Image, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (image.Image, error) {
	return f(path)
}

// Pipeline runs the full extraction for one image at a time. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	log    zerolog.Logger
	loader Loader
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage and per-object messages.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithLoader replaces the loader used by RunFile.
func WithLoader(l Loader) Option {
	return func(p *Pipeline) {
		p.loader = l
	}
}

// New creates a Pipeline from cfg. By default nothing is logged and RunFile
// reads images straight from disk.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	p := &Pipeline{
		cfg:    cfg,
		log:    zerolog.Nop(),
		loader: LoaderFunc(imaging.Open),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// RunFile loads the image at path and runs the pipeline on it. Any failure
// to read or decode the file is returned as a *LoadError with no result.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	img, err := p.loader.Load(path)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	res, err := p.Run(ctx, img)
	var le *LoadError
	if errors.As(err, &le) && le.Path == "" {
		le.Path = path
	}
	return res, err
}

// Run extracts object records from img. A nil or zero-size image is
// reported as a *LoadError.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &LoadError{Err: ErrEmptyImage}
	}

	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	res := &Result{RunID: runID}
	res.Gray = imaging.Gray(img)

	var err error
	res.Binary, res.Threshold, err = morph.Binarize(res.Gray)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize: %w", err)
	}
	log.Debug().Uint8("threshold", res.Threshold).
		Int("foreground", morph.CountForeground(res.Binary)).Msg("binarized")

	if res.Filtered, err = morph.RemoveSmallObjects(res.Binary, float64(p.cfg.MinArea)); err != nil {
		return nil, fmt.Errorf("failed to remove small objects: %w", err)
	}
	log.Debug().Int("min_area", p.cfg.MinArea).
		Int("foreground", morph.CountForeground(res.Filtered)).Msg("small objects removed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if res.Closed, err = morph.Close(res.Filtered, p.cfg.CloseRadius); err != nil {
		return nil, fmt.Errorf("failed to close: %w", err)
	}
	if res.Filled, err = morph.FillHoles(res.Closed); err != nil {
		return nil, fmt.Errorf("failed to fill holes: %w", err)
	}
	log.Debug().Int("radius", p.cfg.CloseRadius).
		Int("foreground", morph.CountForeground(res.Filled)).Msg("closed and filled")

	contours, _, err := contour.Find(res.Filled, contour.RetrieveExternal)
	if err != nil {
		return nil, fmt.Errorf("failed to find contours: %w", err)
	}
	log.Debug().Int("contours", len(contours)).Msg("contours extracted")

	measurements, errs, err := p.measureAll(ctx, contours)
	if err != nil {
		return nil, err
	}

	res.Records = make([]ObjectRecord, 0, len(contours))
	res.Mask = image.NewGray(res.Filled.Bounds())
	for i, c := range contours {
		if errs[i] != nil {
			res.Skipped++
			log.Warn().Err(errs[i]).Int("contour", i).Msg("skipping object")
			continue
		}
		m := measurements[i]
		// Closing can shift a border enough to drop the traced area below
		// the filter's threshold.
		if m.Area < float64(p.cfg.MinArea) {
			res.Skipped++
			log.Warn().Float64("area", m.Area).Int("contour", i).Msg("skipping object below minimum area")
			continue
		}
		if m.Degraded {
			log.Warn().Str("reason", m.DegradedReason).Int("contour", i).Msg("object measured with fallback values")
		}

		res.Records = append(res.Records, ObjectRecord{
			Index:       i + 1,
			Measurement: m,
			Label:       Classify(m.Metric, m.Eccentricity),
			Contour:     c,
		})
		contour.Fill(res.Mask, c, morph.Foreground)
	}

	log.Info().Int("objects", len(res.Records)).Int("skipped", res.Skipped).
		Dur("elapsed", time.Since(start)).Msg("pipeline finished")
	return res, nil
}

// measureAll measures every contour with at most cfg.Workers running at
// once. Per-contour errors are returned positionally; the final error is
// only set when ctx is cancelled.
func (p *Pipeline) measureAll(ctx context.Context, contours []contour.Contour) ([]Measurement, []error, error) {
	measurements := make([]Measurement, len(contours))
	errs := make([]error, len(contours))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, c := range contours {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			measurements[i], errs[i] = Measure(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return measurements, errs, nil
}
