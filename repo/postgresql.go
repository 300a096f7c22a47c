package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/gmyun1999/MY-LOG-BE/domain"
)

// ErrNotFound is returned by narrow updates targeting a missing row.
var ErrNotFound = errors.New("no matching row")

// Config - ...
type Config struct {
	DSN string
}

// PGRepositories bundles the resource repositories over one pool.
type PGRepositories struct {
	Folders           *PGFolderRepo
	ServiceAccounts   *PGServiceAccountRepo
	FolderPermissions *PGFolderPermissionRepo
	Dashboards        *PGDashboardRepo
	PublicDashboards  *PGPublicDashboardRepo
	Projects          *PGProjectRepo
}

// InitPGRepositories - ...
func InitPGRepositories(cfg Config) (*PGRepositories, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return &PGRepositories{
		Folders:           &PGFolderRepo{pool: pool},
		ServiceAccounts:   &PGServiceAccountRepo{pool: pool},
		FolderPermissions: &PGFolderPermissionRepo{pool: pool},
		Dashboards:        &PGDashboardRepo{pool: pool},
		PublicDashboards:  &PGPublicDashboardRepo{pool: pool},
		Projects:          &PGProjectRepo{pool: pool},
	}, nil
}

// PGFolderRepo - ...
type PGFolderRepo struct {
	pool *pgxpool.Pool
}

// Save - upsert keyed by the platform folder uid.
func (repo *PGFolderRepo) Save(folder *domain.UserFolder) error {
	query := `
	insert into t_user_folder(id, uid, user_id, name, org_id, created_by_task)
	values ($1, $2, $3, $4, $5, $6)
	on conflict (uid) do update set
		user_id = excluded.user_id,
		name = excluded.name,
		org_id = excluded.org_id,
		created_by_task = excluded.created_by_task
	`
	_, err := repo.pool.Exec(context.Background(), query,
		folder.ID, folder.UID, folder.UserID, folder.Name, folder.OrgID, folder.CreatedByTask)
	return err
}

func scanFolder(row pgx.Row) (*domain.UserFolder, error) {
	var folder domain.UserFolder
	err := row.Scan(&folder.ID, &folder.UID, &folder.UserID, &folder.Name, &folder.OrgID, &folder.CreatedByTask)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// FindByUserID - ...
func (repo *PGFolderRepo) FindByUserID(userID string) (*domain.UserFolder, error) {
	query := `select id, uid, user_id, name, org_id, created_by_task from t_user_folder where user_id = $1`
	return scanFolder(repo.pool.QueryRow(context.Background(), query, userID))
}

// PGServiceAccountRepo - ...
type PGServiceAccountRepo struct {
	pool *pgxpool.Pool
}

// Save - upsert keyed by the platform account id.
func (repo *PGServiceAccountRepo) Save(account *domain.ServiceAccount) error {
	query := `
	insert into t_service_account(id, account_id, project_id, user_id, name, role, is_disabled, token)
	values ($1, $2, $3, $4, $5, $6, $7, $8)
	on conflict (account_id) do update set
		project_id = excluded.project_id,
		user_id = excluded.user_id,
		name = excluded.name,
		role = excluded.role,
		is_disabled = excluded.is_disabled
	`
	_, err := repo.pool.Exec(context.Background(), query,
		account.ID, account.AccountID, account.ProjectID, account.UserID,
		account.Name, account.Role, account.IsDisabled, account.Token)
	return err
}

// FindByProjectID - ...
func (repo *PGServiceAccountRepo) FindByProjectID(projectID string) (*domain.ServiceAccount, error) {
	var account domain.ServiceAccount
	query := `
	select id, account_id, project_id, user_id, name, role, is_disabled, token
	from t_service_account where project_id = $1
	`
	err := repo.pool.QueryRow(context.Background(), query, projectID).Scan(
		&account.ID, &account.AccountID, &account.ProjectID, &account.UserID,
		&account.Name, &account.Role, &account.IsDisabled, &account.Token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateToken - narrow field update after the token step mints a key.
func (repo *PGServiceAccountRepo) UpdateToken(accountID, token string) error {
	var tag pgconn.CommandTag
	query := `update t_service_account set token = $2 where account_id = $1`
	tag, err := repo.pool.Exec(context.Background(), query, accountID, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PGFolderPermissionRepo - ...
type PGFolderPermissionRepo struct {
	pool *pgxpool.Pool
}

// Save - upsert keyed by (account, folder).
func (repo *PGFolderPermissionRepo) Save(permission *domain.FolderPermission) error {
	query := `
	insert into t_folder_permission(id, service_account_id, folder_uid, permission)
	values ($1, $2, $3, $4)
	on conflict (service_account_id, folder_uid) do update set
		permission = excluded.permission
	`
	_, err := repo.pool.Exec(context.Background(), query,
		permission.ID, permission.ServiceAccountID, permission.FolderUID, permission.Permission)
	return err
}

// FindByServiceAccountID - ...
func (repo *PGFolderPermissionRepo) FindByServiceAccountID(accountID string) (*domain.FolderPermission, error) {
	var permission domain.FolderPermission
	query := `
	select id, service_account_id, folder_uid, permission
	from t_folder_permission where service_account_id = $1
	`
	err := repo.pool.QueryRow(context.Background(), query, accountID).Scan(
		&permission.ID, &permission.ServiceAccountID, &permission.FolderUID, &permission.Permission)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// PGDashboardRepo - ...
type PGDashboardRepo struct {
	pool *pgxpool.Pool
}

// Save - upsert keyed by the platform dashboard uid.
func (repo *PGDashboardRepo) Save(dashboard *domain.Dashboard) error {
	query := `
	insert into t_dashboard(id, uid, title, user_id, project_id, org_id, folder_uid, url, config_json)
	values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	on conflict (uid) do update set
		title = excluded.title,
		user_id = excluded.user_id,
		project_id = excluded.project_id,
		org_id = excluded.org_id,
		folder_uid = excluded.folder_uid,
		url = excluded.url,
		config_json = excluded.config_json
	`
	_, err := repo.pool.Exec(context.Background(), query,
		dashboard.ID, dashboard.UID, dashboard.Title, dashboard.UserID, dashboard.ProjectID,
		dashboard.OrgID, dashboard.FolderUID, dashboard.URL, dashboard.ConfigJSON)
	return err
}

// FindByProjectID - ...
func (repo *PGDashboardRepo) FindByProjectID(projectID string) (*domain.Dashboard, error) {
	var dashboard domain.Dashboard
	query := `
	select id, uid, title, user_id, project_id, org_id, folder_uid, url, config_json
	from t_dashboard where project_id = $1
	`
	err := repo.pool.QueryRow(context.Background(), query, projectID).Scan(
		&dashboard.ID, &dashboard.UID, &dashboard.Title, &dashboard.UserID, &dashboard.ProjectID,
		&dashboard.OrgID, &dashboard.FolderUID, &dashboard.URL, &dashboard.ConfigJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// PGPublicDashboardRepo - ...
type PGPublicDashboardRepo struct {
	pool *pgxpool.Pool
}

// Save - upsert keyed by the platform public dashboard uid.
func (repo *PGPublicDashboardRepo) Save(public *domain.PublicDashboard) error {
	query := `
	insert into t_public_dashboard(id, uid, project_id, dashboard_id, public_url, access_token)
	values ($1, $2, $3, $4, $5, $6)
	on conflict (uid) do update set
		project_id = excluded.project_id,
		dashboard_id = excluded.dashboard_id,
		public_url = excluded.public_url,
		access_token = excluded.access_token
	`
	_, err := repo.pool.Exec(context.Background(), query,
		public.ID, public.UID, public.ProjectID, public.DashboardID, public.PublicURL, public.AccessToken)
	return err
}

// FindByProjectID - ...
func (repo *PGPublicDashboardRepo) FindByProjectID(projectID string) (*domain.PublicDashboard, error) {
	var public domain.PublicDashboard
	query := `
	select id, uid, project_id, dashboard_id, public_url, access_token
	from t_public_dashboard where project_id = $1
	`
	err := repo.pool.QueryRow(context.Background(), query, projectID).Scan(
		&public.ID, &public.UID, &public.ProjectID, &public.DashboardID, &public.PublicURL, &public.AccessToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &public, nil
}

// PGProjectRepo - ...
type PGProjectRepo struct {
	pool *pgxpool.Pool
}

// Save - upsert keyed by project id.
func (repo *PGProjectRepo) Save(project *domain.MonitoringProject) error {
	query := `
	insert into t_monitoring_project(id, user_id, name, project_type, status, description, dashboard_id, user_folder_id, service_account_id, agent_context)
	values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	on conflict (id) do update set
		name = excluded.name,
		project_type = excluded.project_type,
		status = excluded.status,
		description = excluded.description,
		dashboard_id = excluded.dashboard_id,
		user_folder_id = excluded.user_folder_id,
		service_account_id = excluded.service_account_id,
		agent_context = excluded.agent_context
	`
	var agentContext []byte
	if project.AgentContext != nil {
		var err error
		agentContext, err = json.Marshal(project.AgentContext)
		if err != nil {
			return err
		}
	}
	_, err := repo.pool.Exec(context.Background(), query,
		project.ID, project.UserID, project.Name, project.ProjectType, project.Status,
		project.Description, project.DashboardID, project.UserFolderID,
		project.ServiceAccountID, agentContext)
	return err
}

// FindByID - ...
func (repo *PGProjectRepo) FindByID(id string) (*domain.MonitoringProject, error) {
	var project domain.MonitoringProject
	query := `
	select id, user_id, name, project_type, status, description, dashboard_id, user_folder_id, service_account_id, agent_context
	from t_monitoring_project where id = $1
	`
	var agentContext []byte
	err := repo.pool.QueryRow(context.Background(), query, id).Scan(
		&project.ID, &project.UserID, &project.Name, &project.ProjectType, &project.Status,
		&project.Description, &project.DashboardID, &project.UserFolderID,
		&project.ServiceAccountID, &agentContext)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(agentContext) > 0 {
		project.AgentContext = &domain.AgentContext{}
		if err := json.Unmarshal(agentContext, project.AgentContext); err != nil {
			return nil, err
		}
	}
	return &project, nil
}

// UpdateStatus - ...
func (repo *PGProjectRepo) UpdateStatus(id string, status domain.ProjectStatus) error {
	var tag pgconn.CommandTag
	query := `update t_monitoring_project set status = $2 where id = $1`
	tag, err := repo.pool.Exec(context.Background(), query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkReady - flips the project to READY, the finalize task's only write.
func (repo *PGProjectRepo) MarkReady(id, userFolderID string) error {
	var tag pgconn.CommandTag
	query := `update t_monitoring_project set status = $2, user_folder_id = $3 where id = $1`
	tag, err := repo.pool.Exec(context.Background(), query, id, domain.Ready, userFolderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed - flips the project to FAILED, the error link's only write.
func (repo *PGProjectRepo) MarkFailed(id string) error {
	var tag pgconn.CommandTag
	query := `update t_monitoring_project set status = $2 where id = $1`
	tag, err := repo.pool.Exec(context.Background(), query, id, domain.Failed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
