package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/relay"
)

// IsProblemURL reports whether raw is a LeetCode problem page
func IsProblemURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "leetcode.com" && !strings.HasSuffix(host, ".leetcode.com") &&
		host != "leetcode.cn" && !strings.HasSuffix(host, ".leetcode.cn") {
		return false
	}
	return strings.HasPrefix(u.Path, "/problems/")
}

// Page is one open problem page. It answers getData by scraping fresh on
// every request.
type Page struct {
	sender    relay.Sender
	extractor Extractor
	log       zerolog.Logger
}

// NewPage wraps extractor as the page identified by sender
func NewPage(sender relay.Sender, extractor Extractor, log zerolog.Logger) *Page {
	return &Page{sender: sender, extractor: extractor, log: log}
}

var (
	_ relay.Tab      = (*Page)(nil)
	_ relay.Endpoint = (*Page)(nil)
)

// Sender identifies the page
func (p *Page) Sender() relay.Sender {
	return p.sender
}

// GetData scrapes the problem. A page where nothing could be read replies
// without data.
func (p *Page) GetData(ctx context.Context, _ relay.GetDataRequest) (relay.DataResponse, error) {
	problem, err := p.extractor.ExtractProblemContext(ctx)
	if err != nil {
		p.log.Warn().Err(err).Str("tab", p.sender.TabID).Msg("failed to scrape problem")
		return relay.DataResponse{}, err
	}
	if problem.IsEmpty() {
		return relay.DataResponse{}, nil
	}
	return relay.DataResponse{Data: relay.NewProblemData(problem)}, nil
}

// HandleMessage answers an encoded message addressed to the page. Only
// getData is understood.
func (p *Page) HandleMessage(ctx context.Context, data []byte) ([]byte, error) {
	if t := relay.PeekType(data); t != relay.TypeGetData {
		return nil, fmt.Errorf("%w: %q", relay.ErrUnknownType, t)
	}
	resp, err := p.GetData(ctx, relay.GetDataRequest{})
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}
