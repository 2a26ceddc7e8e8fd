package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

// maxBodyBytes caps a season page; the largest per-game pages are ~1MB.
const maxBodyBytes = 16 << 20

type NetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	MaxBodyBytes int64 // 0 uses maxBodyBytes

	mu     sync.Mutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &NetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) currentClient() *http.Client {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.client
}

// -----------------------------------------------------------------------------

// rotateProxy prepares the next request to go out through another proxy.
// The failed request itself is not repeated.
func (nm *NetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs exactly one GET request.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewFetchError(err, "invalid url %q", urlStr)
	}

	if len(params) > 0 {
		q := reqURL.Query()
		for k, v := range params {
			q.Add(k, v)
		}
		reqURL.RawQuery = q.Encode()
	}
	finalURL := reqURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, helpers.NewFetchError(err, "build request for %s", finalURL)
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := nm.currentClient().Do(req)
	if err != nil {
		return nil, helpers.NewFetchError(err, "GET %s", finalURL)
	}
	defer resp.Body.Close()

	nm.Logger.Debug("GET %s -> %d in %v", finalURL, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		nm.Logger.Warning("Request blocked (%d). Rotating proxy for the next request.", resp.StatusCode)
		if nm.Config.Network.Enabled {
			if count, refreshErr := nm.ProxyManager.RefreshProxies(); refreshErr != nil {
				nm.Logger.Error("Failed to refresh proxies: %v", refreshErr)
			} else {
				nm.Logger.Info("Refreshed %d proxies", count)
			}
		}
		nm.rotateProxy()
		return nil, helpers.NewFetchError(nil, "GET %s blocked (status %d)", finalURL, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, helpers.NewFetchError(nil, "GET %s: bad status %d", finalURL, resp.StatusCode)
	}

	limit := nm.MaxBodyBytes
	if limit <= 0 {
		limit = maxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, helpers.NewFetchError(err, "read body of %s", finalURL)
	}
	if int64(len(body)) > limit {
		return nil, helpers.NewFetchError(nil, "GET %s: body exceeds %d bytes", finalURL, limit)
	}

	return body, nil
}

// -----------------------------------------------------------------------------

// String is used in logs
func (nm *NetworkManager) String() string {
	return fmt.Sprintf("NetworkManager(timeout=%ds, proxies=%v)", nm.Config.Network.RequestTimeout, nm.ProxyManager.HasProxies())
}
