package grafana

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return InitHTTPClient(Config{URL: server.URL, AdminAPIKey: "test-key"})
}

func TestCreateFolder(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]interface{}
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uid":"folder-uid-1","title":"My Folder","orgId":1}`))
	})

	folder, err := client.CreateFolder("My Folder")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "/api/folders", gotPath)
	assert.Equal(t, "My Folder", gotBody["title"])
	assert.Equal(t, "folder-uid-1", folder.UID)
	assert.Equal(t, int64(1), folder.OrgID)
}

func TestCreateServiceToken(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/serviceaccounts/42/tokens", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"name":"token-u1-p1","key":"glsa_secret"}`))
	})

	token, err := client.CreateServiceToken(42, "token-u1-p1")
	require.NoError(t, err)
	assert.Equal(t, "glsa_secret", token.Key)
}

func TestSetFolderPermissionsPayload(t *testing.T) {
	var gotBody map[string]interface{}
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/folders/folder-uid-1/permissions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"message":"Folder permissions updated"}`))
	})

	ack, err := client.SetFolderPermissions("folder-uid-1", 42, 1)
	require.NoError(t, err)
	assert.Equal(t, "Folder permissions updated", ack.Message)

	items, ok := gotBody["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.EqualValues(t, 42, item["userId"])
	assert.EqualValues(t, 1, item["permission"])
}

func TestCreateDashboardWrapsPayload(t *testing.T) {
	var gotBody map[string]interface{}
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":1,"uid":"dash-uid","url":"/d/dash-uid","status":"success","version":1}`))
	})

	meta, err := client.CreateDashboard(map[string]interface{}{"title": "Logs"}, "folder-uid-1")
	require.NoError(t, err)
	assert.Equal(t, "dash-uid", meta.UID)
	assert.Equal(t, true, gotBody["overwrite"])
	assert.Equal(t, "folder-uid-1", gotBody["folderUid"])
	dashboard := gotBody["dashboard"].(map[string]interface{})
	assert.Equal(t, "Logs", dashboard["title"])
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"the folder has been changed by someone else"}`))
	})

	_, err := client.CreateFolder("My Folder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "changed by someone else")
}
