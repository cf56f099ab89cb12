package edge

import "time"

// DeveloperStatus represents the lifecycle status of a developer on the
// gateway platform
type DeveloperStatus string

const (
	DeveloperStatusActive   DeveloperStatus = "active"
	DeveloperStatusInactive DeveloperStatus = "inactive"
)

// Developer is the wire representation of a developer resource owned by
// the remote gateway platform
type Developer struct {
	DeveloperID string            `json:"developerId"`
	Email       string            `json:"email"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	UserName    string            `json:"userName"`
	Status      DeveloperStatus   `json:"status,omitempty"`
	Companies   []string          `json:"companies,omitempty"`
	Apps        []string          `json:"apps,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt,omitempty"`
	UpdatedAt   time.Time         `json:"lastModifiedAt,omitempty"`
}

// Clone returns a deep copy of the developer record
func (d *Developer) Clone() *Developer {
	if d == nil {
		return nil
	}
	copied := *d
	if d.Companies != nil {
		copied.Companies = append([]string(nil), d.Companies...)
	}
	if d.Apps != nil {
		copied.Apps = append([]string(nil), d.Apps...)
	}
	if d.Attributes != nil {
		copied.Attributes = make(map[string]string, len(d.Attributes))
		for k, v := range d.Attributes {
			copied.Attributes[k] = v
		}
	}
	return &copied
}

// AppStatus represents the approval status of a developer app
type AppStatus string

const (
	AppStatusApproved AppStatus = "approved"
	AppStatusRevoked  AppStatus = "revoked"
	AppStatusPending  AppStatus = "pending"
)

// App is the wire representation of a developer app
type App struct {
	AppID          string            `json:"appId"`
	Name           string            `json:"name"`
	DisplayName    string            `json:"displayName,omitempty"`
	DeveloperEmail string            `json:"developerEmail"`
	Status         AppStatus         `json:"status,omitempty"`
	APIProducts    []string          `json:"apiProducts,omitempty"`
	CallbackURL    string            `json:"callbackUrl,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	CreatedAt      time.Time         `json:"createdAt,omitempty"`
	UpdatedAt      time.Time         `json:"lastModifiedAt,omitempty"`
}

// Product is the wire representation of an API product
type Product struct {
	Name         string            `json:"name"`
	DisplayName  string            `json:"displayName,omitempty"`
	Description  string            `json:"description,omitempty"`
	ApprovalType string            `json:"approvalType,omitempty"`
	Environments []string          `json:"environments,omitempty"`
	Proxies      []string          `json:"proxies,omitempty"`
	Scopes       []string          `json:"scopes,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// Company is the wire representation of a company a developer may belong to
type Company struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Status      string `json:"status,omitempty"`
}
