package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListFolders(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := testTokenServer(&tokenCalls)
	defer tokenSrv.Close()

	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/mailFolders", r.URL.Path)
		require.Equal(t, "id,displayName,totalItemCount,unreadItemCount", r.URL.Query().Get("$select"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"id": "f1", "displayName": "Inbox", "totalItemCount": 40, "unreadItemCount": 3},
				{"id": "f2", "displayName": "Archive", "totalItemCount": 900, "unreadItemCount": 0},
			},
		})
	}))
	defer graphSrv.Close()

	c, _ := newTestClient(graphSrv.URL, tokenSrv.URL)

	folders, err := c.ListFolders(context.Background())
	require.Nil(t, err)
	require.Len(t, folders, 2)
	require.Equal(t, "Inbox", folders[0].DisplayName)
	require.Equal(t, 3, folders[0].UnreadItemCount)
	require.Equal(t, 900, folders[1].TotalItemCount)
}

func TestListFoldersEmptyOnServerError(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := testTokenServer(&tokenCalls)
	defer tokenSrv.Close()

	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer graphSrv.Close()

	c, _ := newTestClient(graphSrv.URL, tokenSrv.URL)

	folders, err := c.ListFolders(context.Background())
	require.Nil(t, err)
	require.NotNil(t, folders)
	require.Len(t, folders, 0)
}
