// Package geo guesses a departure location from an IP address.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/metrics"
)

const (
	DefaultBaseURL = "https://ipapi.co"
	unknown        = "Unknown"
	cacheNS        = "geo"
)

// Options configures a Locator.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Locator resolves "City, Country" through ipapi.co.
type Locator struct {
	client   *resty.Client
	cache    cache.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func New(opts Options) *Locator {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Locator{
		client: resty.New().
			SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
			SetTimeout(opts.Timeout),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		log:      opts.Logger,
	}
}

type ipapiResponse struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Locate returns a display location for ip. Private, loopback or empty
// addresses resolve the caller's own egress address instead. ok is false when
// the lookup failed; failures are logged and never returned.
func (l *Locator) Locate(ctx context.Context, ip string) (location string, ok bool) {
	path := "/json/"
	if addr := net.ParseIP(ip); addr != nil && !addr.IsPrivate() && !addr.IsLoopback() && !addr.IsUnspecified() {
		path = fmt.Sprintf("/%s/json/", addr.String())
	}

	key := cache.Key(cacheNS, path)
	if l.cache != nil {
		if raw, err := l.cache.Get(ctx, key); err == nil {
			return string(raw), true
		} else if !errors.Is(err, cache.ErrMiss) {
			l.log.Warn().Err(err).Msg("geo cache read failed")
		}
	}

	started := time.Now()
	resp, err := l.client.R().SetContext(ctx).Get(path)
	metrics.ProviderLatency.WithLabelValues("geo").Observe(time.Since(started).Seconds())
	if err != nil {
		l.log.Debug().Err(err).Msg("location lookup failed")
		return "", false
	}
	var body ipapiResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || resp.StatusCode() != http.StatusOK || body.Error {
		l.log.Debug().Err(err).Int("status", resp.StatusCode()).Str("reason", body.Reason).Msg("location lookup rejected")
		return "", false
	}

	location = fmt.Sprintf("%s, %s", orUnknown(body.City), orUnknown(body.CountryName))
	if l.cache != nil {
		if err := l.cache.Set(ctx, key, []byte(location), l.cacheTTL); err != nil {
			l.log.Warn().Err(err).Msg("geo cache write failed")
		}
	}
	return location, true
}

// ClientIP returns the host part of RemoteAddr. X-Forwarded-For is ignored;
// use a ClientIPResolver when the service sits behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIPResolver honours X-Forwarded-For only for requests arriving from a
// trusted proxy.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// ParseTrustedProxies accepts CIDRs or bare addresses. Blank entries are skipped.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func NewClientIPResolver(trustedProxies []string) (*ClientIPResolver, error) {
	trusted, err := ParseTrustedProxies(trustedProxies)
	if err != nil {
		return nil, err
	}
	return &ClientIPResolver{trusted: trusted}, nil
}

// ClientIP walks X-Forwarded-For from the right while hops are trusted and
// returns the first untrusted address. Requests from untrusted peers resolve
// to RemoteAddr.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	remote := ClientIP(r)
	if !c.isTrusted(remote) {
		return remote
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	client := remote
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			break
		}
		client = hop
		if !c.isTrusted(hop) {
			break
		}
	}
	return client
}

func (c *ClientIPResolver) isTrusted(ip string) bool {
	if len(c.trusted) == 0 {
		return false
	}
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range c.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}
