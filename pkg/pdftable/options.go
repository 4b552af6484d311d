package pdftable

import "github.com/rs/zerolog"

// Margins are in points.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// RGB is a fill or stroke colour.
type RGB struct {
	R, G, B int
}

type config struct {
	pageSize    string
	margins     Margins
	compress    bool
	headerFill  RGB
	gridColor   RGB
	gridWidth   float64
	titleSize   float64
	titleSpacer float64
	logger      zerolog.Logger
}

func defaultConfig() config {
	return config{
		pageSize:    "A4",
		margins:     Margins{Left: 20, Top: 20, Right: 20, Bottom: 20},
		compress:    true,
		headerFill:  RGB{R: 211, G: 211, B: 211},
		gridColor:   RGB{R: 128, G: 128, B: 128},
		gridWidth:   0.25,
		titleSize:   16,
		titleSpacer: 12,
		logger:      zerolog.Nop(),
	}
}

// Option configures a render.
type Option func(*config)

// WithPageSize sets a gofpdf page size name such as "A4" or "Letter".
func WithPageSize(size string) Option {
	return func(c *config) {
		c.pageSize = size
	}
}

func WithMargins(m Margins) Option {
	return func(c *config) {
		c.margins = m
	}
}

// WithCompression toggles stream compression. Uncompressed output is handy
// for inspecting content streams.
func WithCompression(enabled bool) Option {
	return func(c *config) {
		c.compress = enabled
	}
}

func WithHeaderFill(fill RGB) Option {
	return func(c *config) {
		c.headerFill = fill
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
