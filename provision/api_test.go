package provision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/gmyun1999/MY-LOG-BE/domain"
)

func newAPIServer(env *testEnv) (*httptest.Server, *testEnv) {
	svc, _ := newProjectService(env)
	router := mux.NewRouter()
	api := &API{Projects: svc}
	api.Register(router)
	return httptest.NewServer(router), env
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestAPIStartsProjectAndDispatchesDashboard(t *testing.T) {
	srv, env := newAPIServer(newTestEnv())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/projects/log", startProjectRequest{
		UserID:    "u1",
		UserName:  "jane",
		Name:      "payments",
		Platform:  domain.PlatformLinux,
		Collector: collectorFixture(),
		Router:    routerFixture(),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := startProjectResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ProjectID)
	require.Equal(t, domain.Initiated, created.Status)
	require.NotNil(t, created.Agent)
	require.Contains(t, created.Agent.CollectorConfigURL, created.ProjectID)

	// The agent artifacts are published, the chain is not yet running.
	require.Equal(t, 0, env.queue.Len())

	dispatchURL := fmt.Sprintf("%s/projects/%s/dashboard", srv.URL, created.ProjectID)
	resp = postJSON(t, dispatchURL, dispatchDashboardRequest{UserID: "u1"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, 1, env.queue.Len())

	stored, err := env.repos.Projects.FindByID(created.ProjectID)
	require.NoError(t, err)
	require.Equal(t, domain.InProgress, stored.Status)
}

func TestAPIRejectsIncompleteStartRequest(t *testing.T) {
	srv, _ := newAPIServer(newTestEnv())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/projects/log", startProjectRequest{
		UserID: "u1",
		Name:   "payments",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIDispatchErrorsMapToStatusCodes(t *testing.T) {
	srv, env := newAPIServer(newTestEnv())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/projects/missing/dashboard", dispatchDashboardRequest{UserID: "u1"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, env.repos.Projects.Save(&domain.MonitoringProject{
		ID: "p1", UserID: "someone-else", Status: domain.Initiated,
	}))
	resp = postJSON(t, srv.URL+"/projects/p1/dashboard", dispatchDashboardRequest{UserID: "u1"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.NoError(t, env.repos.Projects.Save(&domain.MonitoringProject{
		ID: "p2", UserID: "u1", Status: domain.InProgress,
	}))
	resp = postJSON(t, srv.URL+"/projects/p2/dashboard", dispatchDashboardRequest{UserID: "u1"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}
