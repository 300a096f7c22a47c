package provision

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gmyun1999/MY-LOG-BE/agent"
	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/domain"
	jsoniter "github.com/json-iterator/go"
)

var apiJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// API - HTTP surface of the project start flow. Mounted next to the
// metrics handler on the provisioner's router.
type API struct {
	Projects *ProjectService
}

type startProjectRequest struct {
	UserID      string                  `json:"userId"`
	UserName    string                  `json:"userName"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Platform    domain.PlatformType     `json:"platform"`
	Collector   *agent.CollectorContext `json:"collector"`
	Router      *agent.RouterContext    `json:"router"`
}

type startProjectResponse struct {
	ProjectID string               `json:"projectId"`
	Status    domain.ProjectStatus `json:"status"`
	Agent     *domain.AgentContext `json:"agent"`
}

type dispatchDashboardRequest struct {
	UserID string `json:"userId"`
}

type apiError struct {
	Error string `json:"error"`
}

// Register mounts the provisioning endpoints.
func (a *API) Register(router *mux.Router) {
	router.HandleFunc("/projects/log", a.startLogProject).Methods(http.MethodPost)
	router.HandleFunc("/projects/{projectID}/dashboard", a.dispatchDashboard).Methods(http.MethodPost)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := apiJSON.NewEncoder(w).Encode(payload); err != nil {
		log.WithFields(log.Fields{
			"event": "response_encode_failed",
		}).Error(err)
	}
}

// startLogProject creates the project row and returns the agent
// artifact URLs. The dashboard chain is dispatched separately once the
// caller confirms the agent is installed.
func (a *API) startLogProject(w http.ResponseWriter, r *http.Request) {
	request := &startProjectRequest{}
	if err := apiJSON.NewDecoder(r.Body).Decode(request); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed request body"})
		return
	}
	if request.UserID == "" || request.Name == "" || request.Collector == nil || request.Router == nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "userId, name, collector and router are required"})
		return
	}
	user := &domain.User{ID: request.UserID, Name: request.UserName}
	project, err := a.Projects.StartLogProject(
		user,
		request.Name,
		request.Description,
		request.Collector,
		request.Router,
		request.Platform,
	)
	if err != nil {
		log.WithFields(log.Fields{
			"event":  "start_project_failed",
			"userID": request.UserID,
		}).Error(err)
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, startProjectResponse{
		ProjectID: project.ID,
		Status:    project.Status,
		Agent:     project.AgentContext,
	})
}

// dispatchDashboard hands an INITIATED project to the provisioning
// chain.
func (a *API) dispatchDashboard(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectID"]
	request := &dispatchDashboardRequest{}
	if err := apiJSON.NewDecoder(r.Body).Decode(request); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed request body"})
		return
	}
	if request.UserID == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "userId is required"})
		return
	}
	user := &domain.User{ID: request.UserID}
	err := a.Projects.DispatchDashboard(user, projectID)
	switch err {
	case nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"projectId": projectID})
	case ErrProjectNotFound:
		writeJSON(w, http.StatusNotFound, apiError{Error: err.Error()})
	case ErrNotOwner:
		writeJSON(w, http.StatusForbidden, apiError{Error: err.Error()})
	case ErrAlreadyReady, ErrAlreadyProvisioning, ErrProjectFailed:
		writeJSON(w, http.StatusConflict, apiError{Error: err.Error()})
	default:
		log.WithFields(log.Fields{
			"event":     "dispatch_failed",
			"projectID": projectID,
		}).Error(err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
	}
}
