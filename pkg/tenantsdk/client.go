package tenantsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to the public endpoints of the service and hands out
// authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Session performs requests on behalf of one caller.
type Session struct {
	client *Client
	bearer string
}

// WithBearer returns a Session that sends idToken as its bearer credential.
func (c *Client) WithBearer(idToken string) *Session {
	return &Session{client: c, bearer: idToken}
}
