package api

// TenantDomainType orders a tenant's domains by the priority they take in
// generated artifacts. Lower values come first.
type TenantDomainType int

const (
	DomainTypeExternal TenantDomainType = iota
	DomainTypeSubdomain
	DomainTypeFallback
)

// UnmarshalText decodes the wire representation of a domain type.
func (t *TenantDomainType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "subdomain":
		*t = DomainTypeSubdomain
	case "fallback":
		*t = DomainTypeFallback
	default:
		*t = DomainTypeExternal
	}
	return nil
}

// MarshalText encodes a domain type for the wire.
func (t TenantDomainType) MarshalText() ([]byte, error) {
	switch t {
	case DomainTypeSubdomain:
		return []byte("subdomain"), nil
	case DomainTypeFallback:
		return []byte("fallback"), nil
	default:
		return []byte("external"), nil
	}
}

// TenantDomain is a domain associated with a tenant.
type TenantDomain struct {
	Host       string           `json:"host"`
	DomainType TenantDomainType `json:"domain_type"`
}

// IconSize is the pixel dimensions of an icon asset.
type IconSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Icon is a hosted image asset.
type Icon struct {
	URL  string   `json:"url"`
	Size IconSize `json:"size"`
}

// Tenant is a workspace that owns applications.
type Tenant struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	IsTest  bool           `json:"is_test"`
	Domains []TenantDomain `json:"domains,omitempty"`
	Logo    *Icon          `json:"logo,omitempty"`
}

// IOSConfig is the iOS-specific configuration of an application.
type IOSConfig struct {
	BundleID string  `json:"bundle_id"`
	TeamID   *string `json:"team_id,omitempty"`
}

// Application is an app registered under a tenant.
type Application struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Type        string     `json:"type"`
	IOS         *IOSConfig `json:"ios,omitempty"`
	Icon        *Icon      `json:"icon,omitempty"`
}

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type userInfoResponse struct {
	User User `json:"user"`
}

type applicationCollection struct {
	Data []Application `json:"data"`
}

type tenantRequest struct {
	Name   string `json:"name"`
	IsTest bool   `json:"is_test"`
}

type applicationRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Type         string  `json:"type"`
	IOSBundleID  string  `json:"ios_bundle_id"`
	IsNewProject bool    `json:"is_new_project"`
}
