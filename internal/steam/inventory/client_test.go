package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"opnskin/internal/httpx"
	"opnskin/internal/steam"
)

func testClient(t *testing.T, srvURL string, opts ...Option) *Client {
	t.Helper()
	hc, err := httpx.New(httpx.Options{Timeout: 5 * time.Second, MaxRetries: 0})
	require.NoError(t, err)
	return NewClient(hc, append([]Option{WithBaseURL(srvURL)}, opts...)...)
}

func pageJSON(assets []Asset, more bool, last string) []byte {
	b, _ := json.Marshal(map[string]any{
		"assets":       assets,
		"descriptions": []Description{},
		"more":         more,
		"last_assetid": last,
	})
	return b
}

func TestFetch_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/76561198000000001/730/2", r.URL.Path)
		require.Equal(t, "100", r.URL.Query().Get("count"))
		require.Empty(t, r.URL.Query().Get("start_assetid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(pageJSON([]Asset{{AssetID: "a1"}, {AssetID: "a2"}}, false, ""))
	}))
	defer srv.Close()

	g, _ := steam.GameByID("cs2")
	p, err := testClient(t, srv.URL).Fetch(context.Background(), "76561198000000001", g)
	require.NoError(t, err)
	require.Len(t, p.Assets, 2)
	require.False(t, p.Truncated)
}

func TestFetch_FollowsCursorAndMerges(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("start_assetid") {
		case "":
			_, _ = w.Write(pageJSON([]Asset{{AssetID: "a1"}}, true, "a1"))
		case "a1":
			_, _ = w.Write(pageJSON([]Asset{{AssetID: "a2"}}, false, ""))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("start_assetid"))
		}
	}))
	defer srv.Close()

	g, _ := steam.GameByID("cs2")
	p, err := testClient(t, srv.URL).Fetch(context.Background(), "u", g)
	require.NoError(t, err)
	require.Equal(t, 2, pages)
	require.Len(t, p.Assets, 2)
	require.Equal(t, "a1", p.Assets[0].AssetID)
	require.Equal(t, "a2", p.Assets[1].AssetID)
}

func TestFetch_PageCapSetsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// always claims more pages exist
		cursor := r.URL.Query().Get("start_assetid")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(pageJSON([]Asset{{AssetID: "a" + cursor}}, true, fmt.Sprintf("%s.", cursor)))
	}))
	defer srv.Close()

	g, _ := steam.GameByID("cs2")
	p, err := testClient(t, srv.URL, WithMaxPages(3)).Fetch(context.Background(), "u", g)
	require.NoError(t, err)
	require.True(t, p.Truncated)
	require.Len(t, p.Assets, 3)
}

func TestFetch_ShapeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"inventory is private"}`))
	}))
	defer srv.Close()

	g, _ := steam.GameByID("cs2")
	_, err := testClient(t, srv.URL).Fetch(context.Background(), "u", g)
	require.ErrorIs(t, err, ErrShapeMismatch)
	require.Contains(t, err.Error(), "inventory is private")
}

func TestFetch_NonJSONPageAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	g, _ := steam.GameByID("cs2")
	_, err := testClient(t, srv.URL).Fetch(context.Background(), "u", g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-JSON")
}
