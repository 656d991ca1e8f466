package upbit

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Client struct {
	Host string

	AccessKey string
	SecretKey string
}

func New(accessKey, secretKey, host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{Host: host, AccessKey: accessKey, SecretKey: secretKey}
}

const (
	GET  = "GET"
	POST = "POST"
)

// StatusError is returned for non-2xx responses. Callers treat it as
// transient for market-data endpoints and as an order failure for /v1/orders.
type StatusError struct {
	Code int
	Name string
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upbit: status %d, %s: %s", e.Code, e.Name, e.Text)
}

// GetTicker returns the current snapshot of one market.
func (c *Client) GetTicker(ctx context.Context, market string) (*Ticker, error) {
	u := fmt.Sprintf("%s/v1/ticker?markets=%s", c.Host, url.QueryEscape(market))
	var ts []Ticker
	if err := c.request(ctx, GET, u, "", &ts); err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		return nil, errors.New("upbit: empty ticker response")
	}
	return &ts[0], nil
}

// MinuteCandles returns up to count minute candles, oldest first.
// Upbit sends them newest first, so the slice is reversed here.
func (c *Client) MinuteCandles(ctx context.Context, market string, unit, count int) ([]Candle, error) {
	u := fmt.Sprintf("%s/v1/candles/minutes/%d?market=%s&count=%d", c.Host, unit, url.QueryEscape(market), count)
	var candles []Candle
	if err := c.request(ctx, GET, u, "", &candles); err != nil {
		return nil, err
	}
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

// TradeTicks returns recent fills, oldest first.
func (c *Client) TradeTicks(ctx context.Context, market string, count int) ([]TradeTick, error) {
	u := fmt.Sprintf("%s/v1/trades/ticks?market=%s&count=%d", c.Host, url.QueryEscape(market), count)
	var ticks []TradeTick
	if err := c.request(ctx, GET, u, "", &ticks); err != nil {
		return nil, err
	}
	for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
		ticks[i], ticks[j] = ticks[j], ticks[i]
	}
	return ticks, nil
}

// Markets lists all tradable markets.
func (c *Client) Markets(ctx context.Context) ([]Market, error) {
	u := c.Host + "/v1/market/all?isDetails=false"
	var markets []Market
	if err := c.request(ctx, GET, u, "", &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// Accounts returns all balances of the account.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	u := c.Host + "/v1/accounts"
	var accounts []Account
	if err := c.signedRequest(ctx, GET, u, "", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// BuyMarket places a market buy spending total KRW. Returns the order uuid.
func (c *Client) BuyMarket(ctx context.Context, market string, total decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("side", SideBuy)
	params.Set("ord_type", OrdTypePrice)
	params.Set("price", total.String())
	return c.placeOrder(ctx, params)
}

// SellMarket places a market sell of volume base currency. Returns the order uuid.
func (c *Client) SellMarket(ctx context.Context, market string, volume decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("side", SideSell)
	params.Set("ord_type", OrdTypeMarket)
	params.Set("volume", volume.String())
	return c.placeOrder(ctx, params)
}

func (c *Client) placeOrder(ctx context.Context, params url.Values) (string, error) {
	body := make(map[string]string, len(params))
	for k := range params {
		body[k] = params.Get(k)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	var res OrderResponse
	if err := c.do(ctx, POST, c.Host+"/v1/orders", params.Encode(), data, true, &res); err != nil {
		return "", err
	}
	if res.Uuid == "" {
		return "", errors.Errorf("upbit: order response has no uuid: %+v", res)
	}
	return res.Uuid, nil
}

// token builds the JWT Upbit expects: HS256 over access key, a uuid nonce
// and, for parameterized private calls, a SHA512 hash of the query string.
func (c *Client) token(query string) (string, error) {
	claims := jwt.MapClaims{
		"access_key": c.AccessKey,
		"nonce":      uuid.New().String(),
	}
	if query != "" {
		hash := sha512.Sum512([]byte(query))
		claims["query_hash"] = hex.EncodeToString(hash[:])
		claims["query_hash_alg"] = "SHA512"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.SecretKey))
}

func (c *Client) request(ctx context.Context, method, url, query string, result interface{}) error {
	return c.do(ctx, method, url, query, nil, false, result)
}

func (c *Client) signedRequest(ctx context.Context, method, url, query string, result interface{}) error {
	return c.do(ctx, method, url, query, nil, true, result)
}

func (c *Client) do(ctx context.Context, method, url, query string, body []byte, signed bool, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "upbit: new request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signed {
		token, err := c.token(query)
		if err != nil {
			return errors.Wrap(err, "upbit: sign request")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "upbit: http")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "upbit: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode, Text: string(data)}
		var er errorResponse
		if err := json.Unmarshal(data, &er); err == nil && er.Error.Name != "" {
			se.Name = er.Error.Name
			se.Text = er.Error.Message
		}
		return se
	}
	return json.Unmarshal(data, result)
}
