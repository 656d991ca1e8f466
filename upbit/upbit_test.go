package upbit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// accessKey=xxx secretKey=yyy go test -v ./upbit

// go test -v -run TestClient_GetTicker ./upbit
func TestClient_GetTicker(t *testing.T) {
	accessKey := os.Getenv("accessKey")
	secretKey := os.Getenv("secretKey")
	client := New(accessKey, secretKey, "")
	if ticker, err := client.GetTicker(context.Background(), KRW_BTC); err != nil {
		t.Logf("error when GetTicker: %s", err)
	} else {
		t.Logf("GetTicker(%s): %+v", KRW_BTC, ticker)
	}
}

// go test -v -run TestClient_MinuteCandles ./upbit
func TestClient_MinuteCandles(t *testing.T) {
	client := New("", "", "")
	if candles, err := client.MinuteCandles(context.Background(), KRW_BTC, 1, 10); err != nil {
		t.Logf("error when MinuteCandles: %s", err)
	} else {
		t.Logf("MinuteCandles(%s): %v", KRW_BTC, candles)
	}
}

// accessKey=xxx secretKey=yyy go test -v -run TestClient_Accounts ./upbit
func TestClient_Accounts(t *testing.T) {
	accessKey := os.Getenv("accessKey")
	secretKey := os.Getenv("secretKey")
	if accessKey == "" {
		t.Skip("no api key")
	}
	client := New(accessKey, secretKey, "")
	if accounts, err := client.Accounts(context.Background()); err != nil {
		t.Logf("error when Accounts: %s", err)
	} else {
		t.Logf("Accounts: %+v", accounts)
	}
}

func TestClient_MinuteCandlesOrder(t *testing.T) {
	// Upbit returns candles newest first, client must reverse
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"market":"KRW-BTC","trade_price":103.0,"timestamp":3000},
			{"market":"KRW-BTC","trade_price":102.0,"timestamp":2000},
			{"market":"KRW-BTC","trade_price":101.0,"timestamp":1000}
		]`))
	}))
	defer ts.Close()

	client := New("", "", ts.URL)
	candles, err := client.MinuteCandles(context.Background(), KRW_BTC, 1, 3)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	require.Equal(t, 101.0, candles[0].TradePrice)
	require.Equal(t, 103.0, candles[2].TradePrice)
}

func TestClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"name":"too_many_requests","message":"slow down"}}`))
	}))
	defer ts.Close()

	client := New("", "", ts.URL)
	_, err := client.GetTicker(context.Background(), KRW_BTC)
	require.Error(t, err)
	se, ok := err.(*StatusError)
	require.True(t, ok)
	require.Equal(t, http.StatusTooManyRequests, se.Code)
	require.Equal(t, "too_many_requests", se.Name)
}

func TestClient_TickerParse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"market":"KRW-BTC","trade_price":50000000.0,"signed_change_rate":-0.0123}]`))
	}))
	defer ts.Close()

	client := New("", "", ts.URL)
	ticker, err := client.GetTicker(context.Background(), KRW_BTC)
	require.NoError(t, err)
	require.Equal(t, 50000000.0, ticker.TradePrice)
	require.Equal(t, -0.0123, ticker.SignedChangeRate)
}
