package keyrate

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Client fetches the central-bank key rate over its SOAP endpoint. The rate
// is informational; nothing in the ledger depends on it.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// Rate is one published key-rate point.
type Rate struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// NewClient initializes a key-rate client for the given endpoint.
func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *Client) buildRequest() string {
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// Latest returns the most recently published key rate.
func (c *Client) Latest() (*Rate, error) {
	if c.url == "" {
		return nil, fmt.Errorf("key rate endpoint is not configured")
	}

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewBufferString(c.buildRequest()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("Key rate XML response: %d bytes", len(body))

	return parseResponse(body)
}

func parseResponse(raw []byte) (*Rate, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	points := doc.FindElements("//diffgram/KeyRate/KR")
	if len(points) == 0 {
		return nil, fmt.Errorf("no key rate data found in response")
	}

	// The feed lists the newest point first.
	latest := points[0]
	rateElement := latest.FindElement("./Rate")
	dateElement := latest.FindElement("./DT")
	if rateElement == nil || dateElement == nil {
		return nil, fmt.Errorf("malformed key rate entry")
	}

	value, err := decimal.NewFromString(rateElement.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", rateElement.Text(), err)
	}
	date, err := time.Parse("2006-01-02T15:04:05-07:00", dateElement.Text())
	if err != nil {
		// Some feeds publish dates without an offset.
		date, err = time.Parse("2006-01-02T15:04:05", dateElement.Text())
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate date %q: %w", dateElement.Text(), err)
		}
	}

	return &Rate{Date: date, Value: value}, nil
}
