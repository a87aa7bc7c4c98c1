package deploy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

// Prober performs a simple reachability or liveness probe against a target.
// Targets are either http(s) URLs or host:port pairs.
type Prober interface {
	Probe(ctx context.Context, target string) error
}

// netProber is the default Prober: http(s) targets get a GET expecting a
// status below 500, anything else gets a TCP dial. Probes are retried a few
// times with backoff since a deploy target often needs a moment to come up.
type netProber struct {
	client  *http.Client
	dialer  *net.Dialer
	retries uint
}

// NewProber returns the default network Prober.
func NewProber() Prober {
	return &netProber{
		client:  &http.Client{Timeout: 5 * time.Second},
		dialer:  &net.Dialer{Timeout: 5 * time.Second},
		retries: 3,
	}
}

func (p *netProber) Probe(ctx context.Context, target string) error {
	return retry.Do(
		func() error { return p.probeOnce(ctx, target) },
		retry.Context(ctx),
		retry.Attempts(p.retries),
		retry.Delay(500*time.Millisecond),
	)
}

func (p *netProber) probeOnce(ctx context.Context, target string) error {
	if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("probe %s: status %d", target, resp.StatusCode)
		}

		return nil
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return fmt.Errorf("probe %s: %w", target, err)
	}

	return conn.Close()
}
