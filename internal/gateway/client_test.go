package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTradeSendsIdempotencyKey(t *testing.T) {
	var gotKey string
	var gotBody CreateTradeInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gateway/trade/create", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(CreateTradeResult{PayURL: "https://pay.example.com/t/abc"})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	res, err := client.CreateTrade(context.Background(), CreateTradeInput{
		OutTradeNo: "2024051710304542",
		TotalCents: 3650,
		Subject:    "freshmart order 2024051710304542",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/t/abc", res.PayURL)
	assert.NotEmpty(t, gotKey)
	assert.Equal(t, int64(3650), gotBody.TotalCents)
}

func TestCreateTradeRejectsEmptyPayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CreateTradeResult{})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	_, err := client.CreateTrade(context.Background(), CreateTradeInput{OutTradeNo: "x"})
	require.Error(t, err)
}

func TestQueryTradeDecodesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gateway/trade/query", r.URL.Path)
		var in struct {
			OutTradeNo string `json:"out_trade_no"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "2024051710304542", in.OutTradeNo)
		json.NewEncoder(w).Encode(QueryTradeResult{
			Code:        CodeOK,
			TradeStatus: TradeSuccess,
			TradeNo:     "gw-123",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	res, err := client.QueryTrade(context.Background(), "2024051710304542")
	require.NoError(t, err)
	assert.Equal(t, CodeOK, res.Code)
	assert.Equal(t, TradeSuccess, res.TradeStatus)
	assert.Equal(t, "gw-123", res.TradeNo)
}

func TestPostRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	_, err := client.QueryTrade(context.Background(), "x")
	require.Error(t, err)
}
