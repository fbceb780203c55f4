package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultGraphScopes is used when the stored config leaves scopes empty.
const DefaultGraphScopes = "https://graph.microsoft.com/.default"

// DirectoryUser is one user row fetched from the directory API. The
// snapshot is replaced wholesale on every sync; it is never merged.
type DirectoryUser struct {
	ID                string `json:"id"`
	GivenName         string `json:"givenName"`
	Surname           string `json:"surname"`
	DisplayName       string `json:"displayName"`
	OfficeLocation    string `json:"officeLocation"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// DirectorySettings is the decrypted, ready-to-use credential set handed
// to the directory client and the sync operation.
type DirectorySettings struct {
	TenantID      string
	ClientID      string
	ClientSecret  string
	Scopes        string
	MappingPrefix string
	MappingRegex  string
}

// DirectoryConfig is the persisted directory sync configuration. The
// client secret is stored encrypted and never leaves the server.
type DirectoryConfig struct {
	ID                  uuid.UUID  `json:"-"`
	TenantID            string     `json:"tenantId"`
	ClientID            string     `json:"clientId"`
	ClientSecretEnc     string     `json:"-"`
	Scopes              string     `json:"scopes"`
	SyncIntervalMinutes int        `json:"syncIntervalMinutes"`
	MappingPrefix       string     `json:"mappingPrefix"`
	MappingRegex        string     `json:"mappingRegex"`
	LastTestAt          *time.Time `json:"lastTestAt,omitempty"`
	LastSyncAt          *time.Time `json:"lastSyncAt,omitempty"`
	LastSyncStatus      string     `json:"lastSyncStatus,omitempty"`
}

// DirectoryConfigUpdate is the admin-facing config save request. A nil or
// empty ClientSecret keeps the previously stored secret.
type DirectoryConfigUpdate struct {
	TenantID            string  `json:"tenantId"`
	ClientID            string  `json:"clientId"`
	ClientSecret        *string `json:"clientSecret,omitempty"`
	Scopes              string  `json:"scopes"`
	SyncIntervalMinutes int     `json:"syncIntervalMinutes" validate:"omitempty,gte=1"`
	MappingPrefix       string  `json:"mappingPrefix"`
	MappingRegex        string  `json:"mappingRegex"`
}

// SyncResult is returned by a completed directory sync pass.
type SyncResult struct {
	Users        int `json:"users"`
	DesksUpdated int `json:"desksUpdated"`
}
