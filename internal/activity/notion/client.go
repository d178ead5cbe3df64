// Package notion reads the activities database through the Notion API.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/jomei/notionapi"
	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.notion.com"

	propKind        = "Kind"
	propNote        = "Note"
	propStartedTime = "Started Time"
	propEndTime     = "End Time"
)

type Config struct {
	APIKey     string
	DatabaseID string
	BaseURL    string
	Timeout    time.Duration
}

type Client struct {
	cfg Config
	api *notionapi.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.BaseURL != defaultBaseURL {
		if base, err := url.Parse(cfg.BaseURL); err == nil {
			httpClient.Transport = baseURLTransport{base: base, next: http.DefaultTransport}
		} else {
			log.WithField("base_url", cfg.BaseURL).Warnf("Invalid Notion base URL, using default: %v", err)
		}
	}

	return &Client{
		cfg: cfg,
		api: notionapi.NewClient(notionapi.Token(cfg.APIKey), notionapi.WithHTTPClient(httpClient)),
	}
}

func (c *Client) configured() error {
	var missing []string
	if c.cfg.APIKey == "" {
		missing = append(missing, "NOTION_API_KEY")
	}
	if c.cfg.DatabaseID == "" {
		missing = append(missing, "NOTION_ACTIVITIES_DATABASE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", activity.ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Activities returns the sorted option names of the Kind select property.
func (c *Client) Activities(ctx context.Context) ([]string, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	db, err := c.api.Database.Get(ctx, notionapi.DatabaseID(c.cfg.DatabaseID))
	if err != nil {
		log.WithField("database_id", c.cfg.DatabaseID).Errorf("Error fetching activities: %v", err)
		return nil, upstreamErr(err)
	}

	kind, ok := db.Properties[propKind].(*notionapi.SelectPropertyConfig)
	if !ok {
		return []string{}, nil
	}

	names := make([]string, 0, len(kind.Select.Options))
	for _, opt := range kind.Select.Options {
		names = append(names, opt.Name)
	}
	sort.Strings(names)
	return names, nil
}

// CurrentActivity returns the latest started activity without an end time, or nil.
func (c *Client) CurrentActivity(ctx context.Context) (*domain.Activity, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	res, err := c.api.Database.Query(ctx, notionapi.DatabaseID(c.cfg.DatabaseID), &notionapi.DatabaseQueryRequest{
		Filter: &notionapi.PropertyFilter{
			Property: propEndTime,
			Date:     &notionapi.DateFilterCondition{IsEmpty: true},
		},
		Sorts:    []notionapi.SortObject{{Property: propStartedTime, Direction: notionapi.SortOrderDESC}},
		PageSize: 1,
	})
	if err != nil {
		log.WithField("database_id", c.cfg.DatabaseID).Errorf("Error fetching current activity: %v", err)
		return nil, upstreamErr(err)
	}

	if len(res.Results) == 0 {
		return nil, nil
	}
	a := toActivity(res.Results[0])
	return &a, nil
}

func upstreamErr(err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %s %s", activity.ErrUpstream, apiErr.Status, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", activity.ErrUpstream, err)
}

// baseURLTransport sends every request to base instead of the public API host.
type baseURLTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t baseURLTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.base.Scheme
	r.URL.Host = t.base.Host
	r.Host = t.base.Host
	return t.next.RoundTrip(r)
}
