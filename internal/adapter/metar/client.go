package metar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

// Client fetches METARs from a VATSIM-style METAR service: one bulk request
// for every station sharing the region prefix, plus one request per airport
// outside it.
type Client struct {
	baseURL    string
	region     string
	extra      []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a METAR client for baseURL (e.g. "https://metar.vatsim.net").
func NewClient(baseURL, region string, extra []string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		region:     region,
		extra:      extra,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchMETARs returns the latest report for each station, keyed by ICAO.
// A failed bulk request fails the fetch; a failed single-airport request is
// logged and that airport is left out.
func (c *Client) FetchMETARs(ctx context.Context, airports []string) (map[string]string, error) {
	var (
		mu      sync.Mutex
		reports = make(map[string]string)
	)
	merge := func(m map[string]string) {
		mu.Lock()
		defer mu.Unlock()
		for k, v := range m {
			reports[k] = v
		}
	}

	eg, ctx := errgroup.WithContext(ctx)

	if c.region != "" {
		eg.Go(func() error {
			m, err := c.get(ctx, c.baseURL+"/"+url.PathEscape(c.region))
			if err != nil {
				return fmt.Errorf("fetch %s metars: %w", c.region, err)
			}
			merge(m)
			return nil
		})
	}

	for _, icao := range c.singles(airports) {
		eg.Go(func() error {
			m, err := c.get(ctx, c.baseURL+"/metar.php?id="+url.QueryEscape(icao))
			if err != nil {
				c.logger.Warn("metar fetch failed", "icao", icao, "error", err)
				return nil
			}
			merge(m)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// singles lists the airports that the bulk region request does not cover.
func (c *Client) singles(airports []string) []string {
	var out []string
	for _, icao := range append(slices.Clone(c.extra), airports...) {
		if c.region != "" && strings.HasPrefix(icao, c.region) {
			continue
		}
		if !slices.Contains(out, icao) {
			out = append(out, icao)
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, fullURL string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("metar service error: status %d: %s", resp.StatusCode, body)
	}
	return ParseReports(resp.Body)
}

// ParseReports reads one METAR per line, keyed by the station identifier.
// Lines without a station identifier are skipped.
func ParseReports(r io.Reader) (map[string]string, error) {
	reports := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if icao := domain.ReportICAO(line); icao != "" {
			reports[icao] = line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read metars: %w", err)
	}
	return reports, nil
}
