package limitless

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/httpx"
	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const (
	defaultBase     = "https://api.limitless.exchange"
	defaultCategory = 43 // Pre-TGE

	pageLimit = 24
	maxPages  = 20

	// Sin límites documentados: nos quedamos en 10/s.
	ratePerSec = 10

	// bookWorkers limita los GET /orderbook concurrentes.
	bookWorkers = 4
)

// Options configura el Client. Los campos vacíos toman los valores de producción.
type Options struct {
	Base       string
	CategoryID int
	Timeout    time.Duration
	RetryWait  time.Duration
	SkipBooks  bool

	// Now fija el reloj del Normalizer (años implícitos en fechas).
	Now func() time.Time
}

// Client obtiene los mercados Pre-TGE de Limitless Exchange.
type Client struct {
	http       *httpx.Client
	base       string
	categoryID int
	skipBooks  bool
	limiter    *rate.Limiter
	normalizer *domain.Normalizer
}

// NewClient crea un Client con las opciones dadas.
func NewClient(opts Options) *Client {
	if opts.Base == "" {
		opts.Base = defaultBase
	}
	if opts.CategoryID <= 0 {
		opts.CategoryID = defaultCategory
	}
	h := httpx.NewClient(opts.Timeout)
	if opts.RetryWait > 0 {
		h.WithRetryWait(opts.RetryWait)
	}
	return &Client{
		http:       h,
		base:       opts.Base,
		categoryID: opts.CategoryID,
		skipBooks:  opts.SkipBooks,
		limiter:    httpx.NewLimiter(ratePerSec, 5),
		normalizer: domain.NewNormalizer(opts.Now),
	}
}

// Platform implementa ports.MarketProvider.
func (c *Client) Platform() domain.Platform {
	return domain.PlatformLimitless
}
