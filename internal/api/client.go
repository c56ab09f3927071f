package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HassanOPFT/apartments-scraper/internal/districts"
)

// DefaultUserAgent is sent with every listings API request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// findListingsQuery is the GraphQL document for one page of district results.
const findListingsQuery = `fragment WebResult on WebResults {
  total
  listings {
    id title content rooms price area beds wc livings ketchen furnished ac
    lift age fl stairs stores backyard extra_unit family men_place women_place
    rent_period status published create_time published_at last_update
    location { lat lng }
    address district direction city district_id direction_id city_id category
    path uri plan_no parcel_no
    user { phone name bml_license_number bml_url }
  }
}

query findListings($size: Int, $from: Int, $sort: SortInput, $where: WhereInput) {
  Web {
    find(size: $size, from: $from, sort: $sort, where: $where) {
      ...WebResult
    }
  }
}`

// FetchError represents a single failed or malformed listings API call.
// It is never retried at this layer; retry policy lives in the paginator.
type FetchError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error: %s", e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Limiter gates outbound requests. Wait blocks until the next request is
// allowed to start.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Options configures the listings API client.
type Options struct {
	URL       string
	CityID    int
	AfterDate time.Time // zero value disables the create_time filter
	PageSize  int
	Timeout   time.Duration
	UserAgent string
	Limiter   Limiter
}

// Client issues paginated findListings queries. One Client instance is shared
// across all districts of a run so the rate limit spans the whole process.
type Client struct {
	url        string
	cityID     int
	afterDate  time.Time
	pageSize   int
	userAgent  string
	limiter    Limiter
	httpClient *http.Client
}

// NewClient creates a listings API client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Client{
		url:        opts.URL,
		cityID:     opts.CityID,
		afterDate:  opts.AfterDate,
		pageSize:   pageSize,
		userAgent:  userAgent,
		limiter:    opts.Limiter,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PageSize returns the fixed page size used for every request.
func (c *Client) PageSize() int {
	return c.pageSize
}

type whereEq struct {
	Eq int `json:"eq"`
}

type whereGte struct {
	Gte int64 `json:"gte"`
}

type whereClause struct {
	Category    whereEq   `json:"category"`
	CityID      whereEq   `json:"city_id"`
	DirectionID whereEq   `json:"direction_id"`
	DistrictID  whereEq   `json:"district_id"`
	Family      whereEq   `json:"family"`
	CreateTime  *whereGte `json:"create_time,omitempty"`
}

type queryVariables struct {
	Size  int               `json:"size"`
	From  int               `json:"from"`
	Sort  map[string]string `json:"sort"`
	Where whereClause       `json:"where"`
}

type request struct {
	OperationName string         `json:"operationName"`
	Variables     queryVariables `json:"variables"`
	Query         string         `json:"query"`
}

type envelope struct {
	Data struct {
		Web struct {
			Find struct {
				Total    int       `json:"total"`
				Listings []Listing `json:"listings"`
			} `json:"find"`
		} `json:"Web"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchPage issues one paginated request for a (district, family) query and
// decodes the response envelope. It returns the page's records, possibly
// empty, and the API's reported total count for the query — the total is
// authoritative for completion detection, not the caller's local count.
func (c *Client) FetchPage(ctx context.Context, d districts.District, familyCode, offset int) ([]Listing, int, error) {
	if offset < 0 {
		return nil, 0, &FetchError{Message: fmt.Sprintf("negative offset %d", offset)}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, &FetchError{Message: "rate limiter interrupted", Cause: err}
		}
	}

	where := whereClause{
		Category:    whereEq{Eq: 1},
		CityID:      whereEq{Eq: c.cityID},
		DirectionID: whereEq{Eq: d.DirectionID},
		DistrictID:  whereEq{Eq: d.ID},
		Family:      whereEq{Eq: familyCode},
	}
	if !c.afterDate.IsZero() {
		where.CreateTime = &whereGte{Gte: c.afterDate.Unix()}
	}

	payload := request{
		OperationName: "findListings",
		Variables: queryVariables{
			Size:  c.pageSize,
			From:  offset,
			Sort:  map[string]string{"create_time": "desc", "has_img": "desc"},
			Where: where,
		},
		Query: findListingsQuery,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, &FetchError{Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &FetchError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &FetchError{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &FetchError{StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, 0, &FetchError{StatusCode: resp.StatusCode, Message: "malformed response body", Cause: err}
	}
	if len(env.Errors) > 0 {
		return nil, 0, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("GraphQL error: %s", env.Errors[0].Message),
		}
	}

	return env.Data.Web.Find.Listings, env.Data.Web.Find.Total, nil
}
