// internal/infra/practicum/client.go
package practicum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ErrAPI marks any failure while querying the homework-status endpoint:
// network errors, non-200 responses and undecodable bodies. The poll
// loop retries on the next cycle; there is no retry inside the client.
var ErrAPI = errors.New("api error")

// Client queries the Practicum homework-status endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *logrus.Logger
}

func NewClient(httpClient *http.Client, endpoint, token string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      token,
		logger:     logger,
	}
}

// Fetch issues one GET for submissions updated since fromDate and
// returns the decoded JSON body unchanged. Shape checking is the
// caller's job (homework.CheckResponse).
func (c *Client) Fetch(ctx context.Context, fromDate int64) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrAPI, err)
	}

	q := req.URL.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "OAuth "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrAPI, resp.StatusCode)
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response body", ErrAPI)
	}

	c.logger.Debugf("Fetched homework statuses since %d", fromDate)
	return body, nil
}
