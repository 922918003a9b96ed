// Package countries looks up international dialling codes.
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultURL lists every country with just the fields needed to dial.
const DefaultURL = "https://restcountries.com/v3.1/all?fields=name,idd,flag,cca2"

type Country struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	IDD struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	Flag string `json:"flag"`
	CCA2 string `json:"cca2"`
}

func country(name, root, flag, code string) Country {
	var c Country
	c.Name.Common = name
	c.IDD.Root = root
	c.IDD.Suffixes = []string{""}
	c.Flag = flag
	c.CCA2 = code
	return c
}

// Fallback is served whenever the lookup fails.
func Fallback() []Country {
	return []Country{
		country("United States", "+1", "🇺🇸", "US"),
		country("United Kingdom", "+44", "🇬🇧", "GB"),
		country("India", "+91", "🇮🇳", "IN"),
	}
}

// DialCode joins the root with the first suffix.
func DialCode(c Country) string {
	if len(c.IDD.Suffixes) == 0 {
		return c.IDD.Root
	}
	return c.IDD.Root + c.IDD.Suffixes[0]
}

// Client fetches the country list.
type Client struct {
	URL  string
	http *retryablehttp.Client
	log  *slog.Logger
}

func NewClient(log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = log.With("component", "countries")
	return &Client{URL: DefaultURL, http: rc, log: log}
}

// Fetch returns dialable countries sorted by name. Any failure yields
// Fallback; the error is logged, not returned.
func (c *Client) Fetch(ctx context.Context) []Country {
	list, err := c.fetch(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "country lookup failed, using fallback", "err", err)
		return Fallback()
	}
	return list
}

func (c *Client) fetch(ctx context.Context) ([]Country, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("countries: unexpected status %s", resp.Status)
	}

	var all []Country
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("countries: decode: %w", err)
	}
	out := make([]Country, 0, len(all))
	for _, c := range all {
		if c.IDD.Root == "" || c.IDD.Suffixes == nil {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name.Common) < strings.ToLower(out[j].Name.Common)
	})
	return out, nil
}

// Find returns the country with the given ISO code or dial code.
func Find(list []Country, key string) (Country, bool) {
	for _, c := range list {
		if strings.EqualFold(c.CCA2, key) || DialCode(c) == key {
			return c, true
		}
	}
	return Country{}, false
}
