package grafana

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client - visualization platform operations the task units need.
type Client interface {
	CreateFolder(title string) (*Folder, error)
	CreateServiceAccount(name, role string) (*ServiceAccount, error)
	CreateServiceToken(accountID int64, tokenName string) (*ServiceToken, error)
	SetFolderPermissions(folderUID string, accountID int64, permission int) (*PermissionAck, error)
	CreateDashboard(dashboard map[string]interface{}, folderUID string) (*DashboardMeta, error)
	CreatePublicDashboard(dashboardUID string) (*PublicDashboard, error)
	GetFolders() ([]Folder, error)
	GetDashboard(uid string) (map[string]interface{}, error)
}

// Config - ...
type Config struct {
	URL         string
	AdminAPIKey string
}

// HTTPClient - Grafana 12 compatible REST client.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// InitHTTPClient - ...
func InitHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.URL,
		apiKey:  cfg.AdminAPIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(method, path string, payload interface{}, out interface{}) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("grafana: %s %s returned %d: %s", method, path, resp.StatusCode, bodyBytes)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(bodyBytes, out)
}

// CreateFolder - ...
func (c *HTTPClient) CreateFolder(title string) (*Folder, error) {
	var folder Folder
	payload := map[string]interface{}{"title": title}
	if err := c.do(http.MethodPost, "/api/folders", payload, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// CreateServiceAccount - ...
func (c *HTTPClient) CreateServiceAccount(name, role string) (*ServiceAccount, error) {
	var account ServiceAccount
	payload := map[string]interface{}{"name": name, "role": role, "isDisabled": false}
	if err := c.do(http.MethodPost, "/api/serviceaccounts", payload, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateServiceToken - ...
func (c *HTTPClient) CreateServiceToken(accountID int64, tokenName string) (*ServiceToken, error) {
	var token ServiceToken
	payload := map[string]interface{}{"name": tokenName}
	path := fmt.Sprintf("/api/serviceaccounts/%d/tokens", accountID)
	if err := c.do(http.MethodPost, path, payload, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// SetFolderPermissions - ...
func (c *HTTPClient) SetFolderPermissions(folderUID string, accountID int64, permission int) (*PermissionAck, error) {
	var ack PermissionAck
	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"userId": accountID, "permission": permission},
		},
	}
	path := fmt.Sprintf("/api/folders/%s/permissions", folderUID)
	if err := c.do(http.MethodPost, path, payload, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// CreateDashboard - ...
func (c *HTTPClient) CreateDashboard(dashboard map[string]interface{}, folderUID string) (*DashboardMeta, error) {
	var meta DashboardMeta
	payload := map[string]interface{}{
		"dashboard": dashboard,
		"overwrite": true,
		"folderUid": folderUID,
	}
	if err := c.do(http.MethodPost, "/api/dashboards/db", payload, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// CreatePublicDashboard - ...
func (c *HTTPClient) CreatePublicDashboard(dashboardUID string) (*PublicDashboard, error) {
	var public PublicDashboard
	payload := map[string]interface{}{
		"isEnabled":            true,
		"timeSelectionEnabled": true,
		"annotationsEnabled":   true,
		"share":                "public",
	}
	path := fmt.Sprintf("/api/dashboards/uid/%s/public-dashboards", dashboardUID)
	if err := c.do(http.MethodPost, path, payload, &public); err != nil {
		return nil, err
	}
	return &public, nil
}

// GetFolders - folders the admin key can view.
func (c *HTTPClient) GetFolders() ([]Folder, error) {
	var folders []Folder
	if err := c.do(http.MethodGet, "/api/folders", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// GetDashboard - raw dashboard json by uid.
func (c *HTTPClient) GetDashboard(uid string) (map[string]interface{}, error) {
	var dashboard map[string]interface{}
	path := fmt.Sprintf("/api/dashboards/uid/%s", uid)
	if err := c.do(http.MethodGet, path, nil, &dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}
