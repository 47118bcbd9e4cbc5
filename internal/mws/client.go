// Package mws is a client for the merchant web services API. It builds
// canonical, signed requests for named remote operations, sends them and
// decodes the XML or flat-file responses.
package mws

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRegion    = "US"
	defaultUserAgent = "mws-sync/1.0 (Language=Go)"
	defaultTimeout   = 15 * time.Second

	signatureVersion = "2"
	signatureMethod  = "HmacSHA256"

	tracerName = "github.com/donaldgifford/mws-sync/internal/mws"
)

// Regions maps region codes to service endpoints.
var Regions = map[string]string{
	"CA": "https://mws.amazonservices.ca",
	"US": "https://mws.amazonservices.com",
	"DE": "https://mws-eu.amazonservices.com",
	"ES": "https://mws-eu.amazonservices.com",
	"FR": "https://mws-eu.amazonservices.com",
	"IN": "https://mws.amazonservices.in",
	"IT": "https://mws-eu.amazonservices.com",
	"UK": "https://mws-eu.amazonservices.com",
	"JP": "https://mws.amazonservices.jp",
	"CN": "https://mws.amazonservices.com.cn",
	"MX": "https://mws.amazonservices.com.mx",
}

// RegionCodes returns the known region codes, sorted.
func RegionCodes() []string {
	codes := make([]string, 0, len(Regions))
	for code := range Regions {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// ResolveDomain returns domain when set, otherwise the endpoint for region.
// An empty region means US.
func ResolveDomain(region, domain string) (string, error) {
	if domain != "" {
		return strings.TrimRight(domain, "/"), nil
	}
	if region == "" {
		region = defaultRegion
	}
	d, ok := Regions[strings.ToUpper(region)]
	if !ok {
		return "", fmt.Errorf(
			"%w: unknown region %q (valid: %s)",
			ErrInvalidConfig,
			region,
			strings.Join(RegionCodes(), ", "),
		)
	}
	return d, nil
}

// Credentials identify the calling account.
type Credentials struct {
	AccessKey string
	SecretKey string
	AccountID string
	// AuthToken is the delegated-access token, sent as MWSAuthToken when set.
	AuthToken string
	Region    string
	// Domain overrides the region endpoint, e.g. for a local fake service.
	Domain string
}

// Family groups the operations that share an endpoint path, API version and
// account parameter name.
type Family struct {
	Name         string
	Path         string
	Version      string
	AccountField string
}

// Endpoint families.
var (
	FamilyReports = Family{Name: "Reports", Path: "/", Version: "2009-01-01", AccountField: "Merchant"}
	FamilyFeeds   = Family{Name: "Feeds", Path: "/", Version: "2009-01-01", AccountField: "Merchant"}
	FamilyOrders  = Family{
		Name: "Orders", Path: "/Orders/2013-09-01", Version: "2013-09-01", AccountField: "SellerId",
	}
	FamilyProducts = Family{
		Name: "Products", Path: "/Products/2011-10-01", Version: "2011-10-01", AccountField: "SellerId",
	}
	FamilySellers = Family{
		Name: "Sellers", Path: "/Sellers/2011-07-01", Version: "2011-07-01", AccountField: "SellerId",
	}
	FamilyInboundShipments = Family{
		Name:         "InboundShipments",
		Path:         "/FulfillmentInboundShipment/2010-10-01",
		Version:      "2010-10-01",
		AccountField: "SellerId",
	}
	FamilyInventory = Family{
		Name:         "Inventory",
		Path:         "/FulfillmentInventory/2010-10-01",
		Version:      "2010-10-01",
		AccountField: "SellerId",
	}
	FamilyOutboundShipments = Family{
		Name:         "OutboundShipments",
		Path:         "/FulfillmentOutboundShipment/2010-10-01/",
		Version:      "2010-10-01",
		AccountField: "SellerId",
	}
	FamilyRecommendations = Family{
		Name:         "Recommendations",
		Path:         "/Recommendations/2013-04-01",
		Version:      "2013-04-01",
		AccountField: "SellerId",
	}
)

// Families lists every endpoint family.
var Families = []Family{
	FamilyReports,
	FamilyFeeds,
	FamilyOrders,
	FamilyProducts,
	FamilySellers,
	FamilyInboundShipments,
	FamilyInventory,
	FamilyOutboundShipments,
	FamilyRecommendations,
}

// FamilyByName looks a family up case-insensitively.
func FamilyByName(name string) (Family, bool) {
	for _, f := range Families {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Family{}, false
}

// Client sends signed requests. It is safe for concurrent use; the only
// shared mutable state is the optional rate limiter.
type Client struct {
	creds       Credentials
	domain      string
	client      *http.Client
	userAgent   string
	rateLimiter *RateLimiter
	log         *slog.Logger
	nowFunc     func() time.Time
	dumpDir     string
	tracer      trace.Tracer
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (15s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimiter gates every call through r.Wait first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithNowFunc overrides the clock used for the Timestamp parameter.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = f
	}
}

// WithTracerProvider records a client span per call on tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithDumpDir writes every raw response body to dir for debugging.
func WithDumpDir(dir string) Option {
	return func(c *Client) {
		c.dumpDir = dir
	}
}

// NewClient validates creds and resolves the endpoint. Missing keys or an
// unknown region without a domain override wrap ErrInvalidConfig.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	var missing []string
	if creds.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if creds.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if creds.AccountID == "" {
		missing = append(missing, "account id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	domain, err := ResolveDomain(creds.Region, creds.Domain)
	if err != nil {
		return nil, err
	}

	c := &Client{
		creds:     creds,
		domain:    domain,
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		log:       slog.Default(),
		nowFunc:   time.Now,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Domain returns the resolved endpoint.
func (c *Client) Domain() string {
	return c.domain
}

// AccountID returns the account identifier the client signs requests for.
func (c *Client) AccountID() string {
	return c.creds.AccountID
}

// RateLimiter returns the configured limiter, or nil.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}
