package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const sinaQuoteBaseURL = "https://hq.sinajs.cn"

var sinaQuoteRe = regexp.MustCompile(`var hq_str_(\w+)="([^"]*)"`)

// NameResolver looks up display names for A-share symbols through the Sina
// quote API. Best-effort: the dashboard labels runs with it, nothing in the
// engine depends on it.
type NameResolver struct {
	client  *http.Client
	baseURL string
}

func NewNameResolver() *NameResolver {
	return &NameResolver{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: sinaQuoteBaseURL,
	}
}

// LookupName resolves symbol to its listed name. An empty quote payload
// means Sina does not know the symbol and yields ErrInvalidSymbol.
func (r *NameResolver) LookupName(ctx context.Context, symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", fmt.Errorf("%w: empty symbol", ErrInvalidSymbol)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/list="+symbol, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", "http://finance.sina.com.cn/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Sina responds in GBK.
	reader := transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	m := sinaQuoteRe.FindStringSubmatch(string(body))
	if m == nil || len(m) < 3 || strings.TrimSpace(m[2]) == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}
	fields := strings.Split(m[2], ",")
	return strings.TrimSpace(fields[0]), nil
}
