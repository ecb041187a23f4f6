package polymarket

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/httpx"
	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const (
	defaultCLOBBase  = "https://clob.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"
	defaultTag       = "pre-market"
	defaultLimit     = 200

	// Rate limits al 60% de los límites documentados.
	// CLOB /books: 500/10s → 30/s. Gamma /events: 300/10s → 18/s.
	booksRatePerSec = 30
	gammaRatePerSec = 18
)

// Options configura el Client. Los campos vacíos toman los valores de producción.
type Options struct {
	GammaBase string
	CLOBBase  string
	Tag       string // tag_slug de los eventos pre-market
	Limit     int
	Timeout   time.Duration
	RetryWait time.Duration
	SkipBooks bool // no pedir orderbooks al CLOB

	// Now fija el reloj del Normalizer (años implícitos en fechas).
	Now func() time.Time
}

// Client obtiene los mercados pre-market de Polymarket (Gamma + CLOB).
type Client struct {
	http         *httpx.Client
	gammaBase    string
	clobBase     string
	tag          string
	limit        int
	skipBooks    bool
	gammaLimiter *rate.Limiter
	booksLimiter *rate.Limiter
	normalizer   *domain.Normalizer
}

// NewClient crea un Client con las opciones dadas.
func NewClient(opts Options) *Client {
	if opts.GammaBase == "" {
		opts.GammaBase = defaultGammaBase
	}
	if opts.CLOBBase == "" {
		opts.CLOBBase = defaultCLOBBase
	}
	if opts.Tag == "" {
		opts.Tag = defaultTag
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	h := httpx.NewClient(opts.Timeout)
	if opts.RetryWait > 0 {
		h.WithRetryWait(opts.RetryWait)
	}
	return &Client{
		http:         h,
		gammaBase:    opts.GammaBase,
		clobBase:     opts.CLOBBase,
		tag:          opts.Tag,
		limit:        opts.Limit,
		skipBooks:    opts.SkipBooks,
		gammaLimiter: httpx.NewLimiter(gammaRatePerSec, 10),
		booksLimiter: httpx.NewLimiter(booksRatePerSec, 5),
		normalizer:   domain.NewNormalizer(opts.Now),
	}
}

// Platform implementa ports.MarketProvider.
func (c *Client) Platform() domain.Platform {
	return domain.PlatformPolymarket
}
