package market_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"opnskin/internal/cache"
	"opnskin/internal/steam/market"
)

func seedEntry(t *testing.T, store cache.Store, name, currency string, price float64, ts time.Time) {
	t.Helper()
	b, err := json.Marshal(map[string]any{"price": price, "ts": ts})
	require.NoError(t, err)
	key := "price:" + currency + ":" + name
	require.NoError(t, store.Set(context.Background(), key, b))
}

func TestPrice_MarkdownApplied(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"success":true,"lowest_price":"40,00€"}`), nil).
		Times(1)

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), cache.NewMemory(), 0)
	got := r.Price(context.Background(), 730, "AK-47 | Redline (Field-Tested)", "EUR")
	require.InDelta(t, 30.00, got, 0.001) // 40.00 * 0.75
}

func TestPrice_RoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"success":true,"lowest_price":"0,33€"}`), nil).
		Times(1)

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), cache.NewMemory(), 0)
	// 0.33 * 0.75 = 0.2475 -> 0.25
	require.InDelta(t, 0.25, r.Price(context.Background(), 730, "Cheap Sticker", "EUR"), 0.001)
}

func TestPrice_FreshCacheSkipsNetwork(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	store := cache.NewMemory()
	seedEntry(t, store, "AK-47 | Redline (Field-Tested)", "EUR", 30.00, time.Now())

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), store, 0)
	got := r.Price(context.Background(), 730, "AK-47 | Redline (Field-Tested)", "EUR")
	require.InDelta(t, 30.00, got, 0.001)
}

func TestPrice_ExpiredEntryServedWhenUpstreamFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusServiceUnavailable, `unavailable`), nil).
		Times(1)

	store := cache.NewMemory()
	// 7h old entry: past the 6h TTL, so a refresh is attempted, but the 503
	// means the stale value still wins over "no data".
	seedEntry(t, store, "X", "EUR", 12.50, time.Now().Add(-7*time.Hour))

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), store, 0)
	require.InDelta(t, 12.50, r.Price(context.Background(), 730, "X", "EUR"), 0.001)
}

func TestPrice_ZeroQuoteKeepsPreviousValue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"success":false}`), nil).
		Times(1)

	store := cache.NewMemory()
	seedEntry(t, store, "X", "EUR", 5.00, time.Now().Add(-7*time.Hour))

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), store, 0)
	require.InDelta(t, 5.00, r.Price(context.Background(), 730, "X", "EUR"), 0.001)
}

func TestPrice_NoCacheNoUpstreamIsZero(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, fmt.Errorf("connection refused")).
		Times(1)

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), cache.NewMemory(), 0)
	require.Zero(t, r.Price(context.Background(), 730, "Never Seen", "EUR"))
}

func TestPrice_SuccessIsCached(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"success":true,"lowest_price":"10,00€"}`), nil).
		Times(1) // second Price call must hit the cache

	r := market.NewResolver(market.NewClient(market.WithHTTPClient(httpClient)), cache.NewMemory(), 0)
	first := r.Price(context.Background(), 730, "Y", "EUR")
	second := r.Price(context.Background(), 730, "Y", "EUR")
	require.InDelta(t, 7.50, first, 0.001)
	require.Equal(t, first, second)
}

func TestCurrencyCode(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"EUR": 3, "USD": 1, "GBP": 2, "RUB": 5, "CNY": 23,
		"eur": 3,
		"JPY": 3, // unsupported falls back to EUR
		"":    3,
	}
	for in, want := range cases {
		require.Equal(t, want, market.CurrencyCode(in), "currency %q", in)
	}
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"30,24€", 30.24, false},
		{"$1,234.56", 1234.56, false},
		{"1 234,56 pуб.", 1234.56, false},
		{"¥ 12.5", 12.5, false},
		{"0,00€", 0, false},
		{"1.234,56€", 1234.56, false},
		{"", 0, true},
		{"free", 0, true},
	}
	for _, c := range cases {
		got, err := market.ParsePrice(c.in)
		if c.wantErr {
			require.Error(t, err, "input %q", c.in)
			continue
		}
		require.NoError(t, err, "input %q", c.in)
		require.InDelta(t, c.want, got, 0.0001, "input %q", c.in)
	}
}
