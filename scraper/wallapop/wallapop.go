package wallapop

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"wallapop-market/config"
	"wallapop-market/models"
	"wallapop-market/utils"
)

const (
	searchBaseURL = "https://es.wallapop.com/search"
	itemBaseURL   = "https://es.wallapop.com/item/"
	platform      = "wallapop"
	categoryID    = "24200"

	maxTargetCount = 1000

	// responseQueueSize bounds the buffered network-response queue; the
	// engine drains it after every suspension point, so the bound is only
	// hit if a page floods responses mid-wait, in which case extras are
	// dropped like any other unusable response.
	responseQueueSize = 256
)

var validOrders = map[string]bool{
	"most_relevance":    true,
	"price_low_to_high": true,
	"price_high_to_low": true,
	"newest":            true,
}

// Request describes one extraction: what to search and how hard to filter.
type Request struct {
	Keyword     string
	OrderBy     string
	TargetCount int
	TextFilter  string
	MinPrice    *float64
	MaxPrice    *float64
	Headless    bool
	Strict      bool
}

// Scraper drives a browser session against the marketplace search page and
// harvests listings from the intercepted search API responses. One browser
// session per Extract call; not safe for concurrent calls against the same
// keyword's persisted state without an external lock.
type Scraper struct {
	settings config.ScraperSettings
	logger   *utils.Logger
	retry    *utils.RetryConfig
	execPath string
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	settings := cfg.ScraperSettings()
	logger = logger.WithComponent("wallapop")
	return &Scraper{
		settings: settings,
		logger:   logger,
		retry: &utils.RetryConfig{
			MaxAttempts: settings.NavRetries,
			Delay:       2 * time.Second,
			Logger:      logger,
		},
		execPath: findChromeBinary(cfg.ChromeBin),
	}
}

// capturedResponse is one qualifying network response waiting to be drained.
type capturedResponse struct {
	requestID network.RequestID
	url       string
}

// session holds the per-extraction state. All fields except the response
// queue are touched only by the engine goroutine; the queue is fed by the
// browser event callback and drained synchronously between waits.
type session struct {
	req       Request
	target    int
	seen      *utils.IDSet
	listings  []*models.Listing
	responses chan capturedResponse

	hits           int
	loggedEndpoint bool
}

// Extract searches the keyword and returns normalized listings in discovery
// order, bounded by the configured timeout budget. In strict mode a session
// with zero recognized listing responses fails with ErrNoListingData.
func (s *Scraper) Extract(ctx context.Context, req Request) ([]*models.Listing, error) {
	req = normalizeRequest(req)
	if req.TargetCount == 0 {
		return nil, nil
	}

	searchURL := buildSearchURL(req)
	s.logger.Info("Searching %q (order=%s, target=%d, filter=%q, strict=%v, headless=%v)",
		req.Keyword, req.OrderBy, req.TargetCount, req.TextFilter, req.Strict, req.Headless)
	s.logger.Info("Opening %s", searchURL)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", req.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 720),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if s.execPath != "" {
		opts = append(opts, chromedp.ExecPath(s.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	tabCtx, cancelBudget := context.WithTimeout(tabCtx, s.settings.Timeout)
	defer cancelBudget()

	sess := &session{
		req:       req,
		target:    req.TargetCount,
		seen:      utils.NewIDSet(),
		responses: make(chan capturedResponse, responseQueueSize),
	}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if !isCandidateResponse(resp.Response.URL, resp.Response.Status) {
			return
		}
		select {
		case sess.responses <- capturedResponse{requestID: resp.RequestID, url: resp.Response.URL}:
		default:
			// queue full; the response is lost, same as an unparsable one
		}
	})

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		return nil, fmt.Errorf("wallapop: enable network events: %w", err)
	}

	if err := s.navigate(tabCtx, searchURL); err != nil {
		s.logger.Error("Could not load search page: %v", err)
		return nil, err
	}

	s.sleep(tabCtx, s.settings.InitialWait)
	s.dismissCookieBanner(tabCtx)
	s.sleep(tabCtx, s.settings.InitialWait)
	s.drain(tabCtx, sess)

	emptyIterations := 0
	prevCount := len(sess.listings)

	for len(sess.listings) < sess.target &&
		emptyIterations < s.settings.MaxEmptyIterations &&
		tabCtx.Err() == nil {

		clicked := s.tryLoadMore(tabCtx)
		if !clicked {
			s.scroll(tabCtx)
		}

		base := s.settings.AfterScrollWait
		if clicked {
			base = s.settings.AfterClickWait
		}
		s.sleep(tabCtx, jittered(base, s.settings.Jitter, s.settings.MinWait))
		s.drain(tabCtx, sess)

		now := len(sess.listings)
		if now == prevCount {
			emptyIterations++
		} else {
			emptyIterations = 0
			prevCount = now
		}

		s.logger.Info("Collected %d/%d listings (empty iterations=%d)",
			now, sess.target, emptyIterations)
	}

	// one last drain in case the final wait raced the cap checks
	s.drain(tabCtx, sess)

	s.logger.Info("Session done — %d listings from %d recognized responses",
		len(sess.listings), sess.hits)

	if sess.hits == 0 {
		s.logger.Warn("No listing JSON detected in any response — endpoint change, block or captcha?")
		if req.Strict {
			return nil, ErrNoListingData{Keyword: req.Keyword}
		}
	}

	return sess.listings, nil
}

func normalizeRequest(req Request) Request {
	if !validOrders[req.OrderBy] {
		req.OrderBy = "most_relevance"
	}
	if req.TargetCount < 0 {
		req.TargetCount = 0
	}
	if req.TargetCount > maxTargetCount {
		req.TargetCount = maxTargetCount
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		req.MinPrice, req.MaxPrice = req.MaxPrice, req.MinPrice
	}
	req.TextFilter = strings.TrimSpace(req.TextFilter)
	return req
}

func buildSearchURL(req Request) string {
	params := url.Values{}
	params.Set("source", "search_box")
	params.Set("keywords", req.Keyword)
	params.Set("category_id", categoryID)
	params.Set("order_by", req.OrderBy)
	if req.MinPrice != nil {
		params.Set("min_sale_price", strconv.Itoa(int(*req.MinPrice)))
	}
	if req.MaxPrice != nil {
		params.Set("max_sale_price", strconv.Itoa(int(*req.MaxPrice)))
	}
	return searchBaseURL + "?" + params.Encode()
}

// isCandidateResponse keeps only first-party responses on the endpoints
// where listing JSON shows up, dropping third-party noise (analytics,
// error trackers) before any decoding happens.
func isCandidateResponse(responseURL string, status int64) bool {
	if status != 200 {
		return false
	}
	if !strings.Contains(responseURL, "wallapop.com") {
		return false
	}
	return strings.Contains(responseURL, "section?") ||
		strings.Contains(responseURL, "search?") ||
		strings.Contains(responseURL, "/api/") ||
		strings.Contains(responseURL, "_next")
}

// navigate loads the search page: a bounded number of timed attempts, then
// one best-effort load without the readiness wait.
func (s *Scraper) navigate(ctx context.Context, searchURL string) error {
	err := s.retry.Do("load-search-page", func() error {
		navCtx, cancel := context.WithTimeout(ctx, s.settings.NavTimeout)
		defer cancel()
		return chromedp.Run(navCtx,
			chromedp.Navigate(searchURL),
			chromedp.WaitReady("body"),
		)
	})
	if err == nil {
		return nil
	}

	s.logger.Warn("Timed navigation failed, trying best-effort load: %v", err)

	navCtx, cancel := context.WithTimeout(ctx, s.settings.NavTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(searchURL)); err != nil {
		return ErrNavigation{URL: searchURL, Err: err}
	}
	return nil
}

// dismissCookieBanner clicks the consent button when present. Best-effort,
// never fatal.
func (s *Scraper) dismissCookieBanner(ctx context.Context) {
	var clicked bool
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		(function() {
			var buttons = document.querySelectorAll('button');
			for (var i = 0; i < buttons.length; i++) {
				var text = (buttons[i].innerText || '').toLowerCase();
				if (text.indexOf('aceptar') !== -1) {
					buttons[i].click();
					return true;
				}
			}
			return false;
		})()
	`, &clicked))
	if err != nil || !clicked {
		s.logger.Debug("No cookie banner dismissed")
		return
	}
	s.logger.Info("Cookie banner accepted")
}

// tryLoadMore clicks the "load more" affordance if it is visible, with
// bounded retries. Returns false when the page offers no such button.
func (s *Scraper) tryLoadMore(ctx context.Context) bool {
	const clickScript = `
		(function() {
			var buttons = document.querySelectorAll('button, walla-button');
			for (var i = 0; i < buttons.length; i++) {
				var text = (buttons[i].innerText || '').toLowerCase();
				if (text.indexOf('cargar más') !== -1 || text.indexOf('cargar mas') !== -1) {
					var rect = buttons[i].getBoundingClientRect();
					if (rect.width === 0 || rect.height === 0) continue;
					buttons[i].click();
					return true;
				}
			}
			return false;
		})()
	`

	for attempt := 1; attempt <= s.settings.ClickRetries; attempt++ {
		var clicked bool
		err := chromedp.Run(ctx, chromedp.Evaluate(clickScript, &clicked))
		if err == nil {
			if clicked {
				s.logger.Info("Clicked 'load more'")
			}
			return clicked
		}
		s.logger.Warn("'Load more' click failed (attempt %d/%d): %v",
			attempt, s.settings.ClickRetries, err)
		s.sleep(ctx, time.Second)
	}
	return false
}

// scroll performs the fallback pagination gesture.
func (s *Scraper) scroll(ctx context.Context) {
	script := fmt.Sprintf("window.scrollBy(0, %d)", s.settings.ScrollDelta)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		s.logger.Warn("Scroll failed: %v", err)
		return
	}
	s.logger.Debug("Scrolled (no 'load more' button)")
}

// drain synchronously consumes every queued response. Runs on the engine
// goroutine between suspension points, so session state needs no locking
// beyond the seen-ID set.
func (s *Scraper) drain(ctx context.Context, sess *session) {
	for {
		select {
		case resp := <-sess.responses:
			s.consume(ctx, sess, resp)
		default:
			return
		}
	}
}

// consume fetches one response body, extracts listing items and folds them
// into the session. Undecodable or unrecognizable bodies are skipped
// silently; they are expected noise, not errors.
func (s *Scraper) consume(ctx context.Context, sess *session, resp capturedResponse) {
	if len(sess.listings) >= sess.target {
		return
	}

	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return
	}
	body, err := network.GetResponseBody(resp.requestID).Do(cdp.WithExecutor(ctx, c.Target))
	if err != nil {
		return
	}

	data, ok := decodeJSONBody(body)
	if !ok {
		return
	}

	items := ExtractItems(data)
	if len(items) == 0 {
		return
	}

	sess.hits++
	if !sess.loggedEndpoint {
		sess.loggedEndpoint = true
		s.logger.Info("Listing endpoint detected: %s", resp.url)
	}

	foldItems(sess, items)
}

// foldItems folds raw items into the session: normalize, drop items already
// seen this run, apply the optional text filter, stop at the target count.
// The seen-ID set guarantees no two collected listings share an external ID.
func foldItems(sess *session, items []map[string]any) {
	for _, item := range items {
		if len(sess.listings) >= sess.target {
			return
		}

		l := normalizeItem(item)
		if l == nil {
			continue
		}
		if !sess.seen.Add(l.ExternalID) {
			continue
		}
		if sess.req.TextFilter != "" && !utils.MatchesFilter(sess.req.TextFilter, l.Text()) {
			continue
		}

		sess.listings = append(sess.listings, l)
	}
}

// decodeJSONBody decodes a response body as JSON regardless of the declared
// content type, rejecting anything that does not start like JSON.
func decodeJSONBody(body []byte) (any, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	var data any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return nil, false
	}
	return data, true
}

// jittered perturbs a base wait by ±jitter with a hard floor.
func jittered(base, jitter, min time.Duration) time.Duration {
	if jitter > 0 {
		base += time.Duration(rand.Int63n(int64(2*jitter)+1)) - jitter
	}
	if base < min {
		base = min
	}
	return base
}

// sleep blocks for d or until the session context ends.
func (s *Scraper) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
