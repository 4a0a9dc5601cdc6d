// Package weather provides the OpenWeatherMap lookup used by the weather
// command.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/normanking/pia/internal/apperr"
)

// DefaultBaseURL is the OpenWeatherMap API endpoint.
const DefaultBaseURL = "https://api.openweathermap.org"

// Client queries current weather conditions.
type Client struct {
	apiKey  string
	lang    string
	baseURL string
	client  *http.Client
}

// New creates a weather client. An empty apiKey is allowed; lookups then
// fail with an unconfigured message before any network I/O.
func New(apiKey, lang string) *Client {
	return &Client{
		apiKey:  apiKey,
		lang:    lang,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// NewWithBaseURL is New with an overridable endpoint, for tests.
func NewWithBaseURL(apiKey, lang, baseURL string) *Client {
	c := New(apiKey, lang)
	c.baseURL = baseURL
	return c
}

type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Message string `json:"message"`
}

// Current returns a one-line current-conditions summary for city.
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	if c.apiKey == "" {
		return "", apperr.New(apperr.KindUnconfigured, "Weather API key missing")
	}
	if city == "" {
		return "", apperr.New(apperr.KindFormat, "No city given (e.g. weather Berlin)")
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
	endpoint := c.baseURL + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "Weather lookup unavailable", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "Weather lookup unavailable (offline)", err)
	}
	defer resp.Body.Close()

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "Weather service returned an unreadable response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", apperr.New(apperr.KindUpstream, fmt.Sprintf("Weather error: %s", msg))
	}

	desc := ""
	if len(data.Weather) > 0 {
		desc = data.Weather[0].Description
	}
	return fmt.Sprintf("Weather in %s: %.1f°C, %s", city, data.Main.Temp, desc), nil
}
