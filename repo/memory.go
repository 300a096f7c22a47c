package repo

import (
	"sync"

	"github.com/gmyun1999/MY-LOG-BE/domain"
)

// MemoryRepositories - process-local repositories for tests and
// single-node runs. Same upsert-by-external-id semantics as PG.
type MemoryRepositories struct {
	Folders           *MemoryFolderRepo
	ServiceAccounts   *MemoryServiceAccountRepo
	FolderPermissions *MemoryFolderPermissionRepo
	Dashboards        *MemoryDashboardRepo
	PublicDashboards  *MemoryPublicDashboardRepo
	Projects          *MemoryProjectRepo
}

// InitMemoryRepositories - ...
func InitMemoryRepositories() *MemoryRepositories {
	return &MemoryRepositories{
		Folders:           &MemoryFolderRepo{byUID: map[string]*domain.UserFolder{}},
		ServiceAccounts:   &MemoryServiceAccountRepo{byAccountID: map[string]*domain.ServiceAccount{}},
		FolderPermissions: &MemoryFolderPermissionRepo{byKey: map[string]*domain.FolderPermission{}},
		Dashboards:        &MemoryDashboardRepo{byUID: map[string]*domain.Dashboard{}},
		PublicDashboards:  &MemoryPublicDashboardRepo{byUID: map[string]*domain.PublicDashboard{}},
		Projects:          &MemoryProjectRepo{byID: map[string]*domain.MonitoringProject{}},
	}
}

// MemoryFolderRepo - ...
type MemoryFolderRepo struct {
	mu    sync.Mutex
	byUID map[string]*domain.UserFolder
}

// Save - ...
func (repo *MemoryFolderRepo) Save(folder *domain.UserFolder) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *folder
	repo.byUID[folder.UID] = &clone
	return nil
}

// FindByUserID - ...
func (repo *MemoryFolderRepo) FindByUserID(userID string) (*domain.UserFolder, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, folder := range repo.byUID {
		if folder.UserID == userID {
			clone := *folder
			return &clone, nil
		}
	}
	return nil, nil
}

// Len - stored row count, for convergence assertions in tests.
func (repo *MemoryFolderRepo) Len() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.byUID)
}

// MemoryServiceAccountRepo - ...
type MemoryServiceAccountRepo struct {
	mu          sync.Mutex
	byAccountID map[string]*domain.ServiceAccount
}

// Save - ...
func (repo *MemoryServiceAccountRepo) Save(account *domain.ServiceAccount) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *account
	if existing, ok := repo.byAccountID[account.AccountID]; ok && clone.Token == "" {
		clone.Token = existing.Token
	}
	repo.byAccountID[account.AccountID] = &clone
	return nil
}

// FindByProjectID - ...
func (repo *MemoryServiceAccountRepo) FindByProjectID(projectID string) (*domain.ServiceAccount, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, account := range repo.byAccountID {
		if account.ProjectID == projectID {
			clone := *account
			return &clone, nil
		}
	}
	return nil, nil
}

// UpdateToken - ...
func (repo *MemoryServiceAccountRepo) UpdateToken(accountID, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	account, ok := repo.byAccountID[accountID]
	if !ok {
		return ErrNotFound
	}
	account.Token = token
	return nil
}

// MemoryFolderPermissionRepo - ...
type MemoryFolderPermissionRepo struct {
	mu    sync.Mutex
	byKey map[string]*domain.FolderPermission
}

// Save - ...
func (repo *MemoryFolderPermissionRepo) Save(permission *domain.FolderPermission) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *permission
	repo.byKey[permission.ServiceAccountID+"/"+permission.FolderUID] = &clone
	return nil
}

// FindByServiceAccountID - ...
func (repo *MemoryFolderPermissionRepo) FindByServiceAccountID(accountID string) (*domain.FolderPermission, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, permission := range repo.byKey {
		if permission.ServiceAccountID == accountID {
			clone := *permission
			return &clone, nil
		}
	}
	return nil, nil
}

// MemoryDashboardRepo - ...
type MemoryDashboardRepo struct {
	mu    sync.Mutex
	byUID map[string]*domain.Dashboard
}

// Save - ...
func (repo *MemoryDashboardRepo) Save(dashboard *domain.Dashboard) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *dashboard
	repo.byUID[dashboard.UID] = &clone
	return nil
}

// FindByProjectID - ...
func (repo *MemoryDashboardRepo) FindByProjectID(projectID string) (*domain.Dashboard, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, dashboard := range repo.byUID {
		if dashboard.ProjectID == projectID {
			clone := *dashboard
			return &clone, nil
		}
	}
	return nil, nil
}

// MemoryPublicDashboardRepo - ...
type MemoryPublicDashboardRepo struct {
	mu    sync.Mutex
	byUID map[string]*domain.PublicDashboard
}

// Save - ...
func (repo *MemoryPublicDashboardRepo) Save(public *domain.PublicDashboard) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *public
	repo.byUID[public.UID] = &clone
	return nil
}

// FindByProjectID - ...
func (repo *MemoryPublicDashboardRepo) FindByProjectID(projectID string) (*domain.PublicDashboard, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, public := range repo.byUID {
		if public.ProjectID == projectID {
			clone := *public
			return &clone, nil
		}
	}
	return nil, nil
}

// MemoryProjectRepo - ...
type MemoryProjectRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.MonitoringProject
}

// Save - ...
func (repo *MemoryProjectRepo) Save(project *domain.MonitoringProject) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *project
	repo.byID[project.ID] = &clone
	return nil
}

// FindByID - ...
func (repo *MemoryProjectRepo) FindByID(id string) (*domain.MonitoringProject, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if project, ok := repo.byID[id]; ok {
		clone := *project
		return &clone, nil
	}
	return nil, nil
}

// UpdateStatus - ...
func (repo *MemoryProjectRepo) UpdateStatus(id string, status domain.ProjectStatus) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	project, ok := repo.byID[id]
	if !ok {
		return ErrNotFound
	}
	project.Status = status
	return nil
}

// MarkReady - ...
func (repo *MemoryProjectRepo) MarkReady(id, userFolderID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	project, ok := repo.byID[id]
	if !ok {
		return ErrNotFound
	}
	project.Status = domain.Ready
	project.UserFolderID = userFolderID
	return nil
}

// MarkFailed - ...
func (repo *MemoryProjectRepo) MarkFailed(id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	project, ok := repo.byID[id]
	if !ok {
		return ErrNotFound
	}
	project.Status = domain.Failed
	return nil
}
