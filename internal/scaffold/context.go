package scaffold

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parra-inc/parra-cli/internal/api"
)

// AppName carries every variant of the application name the templates need.
type AppName struct {
	Raw         string `yaml:"raw"`
	Kebab       string `yaml:"kebab"`
	UpperCamel  string `yaml:"upper_camel"`
	DisplayName string `yaml:"display_name"`
}

// CodeSigning is the signing configuration for one build scheme.
type CodeSigning struct {
	Identity         string `yaml:"identity"`
	Required         string `yaml:"required"`
	Allowed          string `yaml:"allowed"`
	Style            string `yaml:"style"`
	ProfileSpecifier string `yaml:"profile_specifier"`
}

// CodeSigningSchemes holds signing configuration per scheme.
type CodeSigningSchemes struct {
	Debug   CodeSigning `yaml:"debug"`
	Release CodeSigning `yaml:"release"`
}

// Entitlements is the generated entitlement values for one build scheme.
type Entitlements struct {
	APSEnvironment    string `yaml:"aps_environment"`
	AssociatedDomains string `yaml:"associated_domains"`
}

// EntitlementSchemes holds entitlements per scheme.
type EntitlementSchemes struct {
	Debug   Entitlements `yaml:"debug"`
	Release Entitlements `yaml:"release"`
}

// AppInfo is the application slice of the template context.
type AppInfo struct {
	ID               string             `yaml:"id"`
	BuildNumber      string             `yaml:"build_number"`
	MarketingVersion string             `yaml:"marketing_version"`
	Name             AppName            `yaml:"name"`
	BundleID         string             `yaml:"bundle_id"`
	DeploymentTarget string             `yaml:"deployment_target"`
	TeamID           string             `yaml:"team_id"`
	CodeSign         CodeSigningSchemes `yaml:"code_sign"`
	Entitlements     EntitlementSchemes `yaml:"entitlements"`
}

// TenantInfo is the tenant slice of the template context.
type TenantInfo struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SDKInfo is the SDK slice of the template context.
type SDKInfo struct {
	Version string `yaml:"version"`
}

// TemplateInfo names the template being rendered.
type TemplateInfo struct {
	Name string `yaml:"name"`
}

// ProjectContext is the full set of values available to project templates.
type ProjectContext struct {
	App      AppInfo      `yaml:"app"`
	Tenant   TenantInfo   `yaml:"tenant"`
	SDK      SDKInfo      `yaml:"sdk"`
	Template TemplateInfo `yaml:"template"`
}

// BuildContext assembles the template context from API responses.
func BuildContext(tenant *api.Tenant, app *api.Application, templateName, sdkVersion string) (*ProjectContext, error) {
	if app.IOS == nil {
		return nil, fmt.Errorf("application %q has no iOS configuration", app.Name)
	}

	safeName := SanitizeName(app.Name)
	if safeName == "" {
		return nil, fmt.Errorf("application name %q contains no usable characters", app.Name)
	}

	teamID := ""
	if app.IOS.TeamID != nil {
		teamID = *app.IOS.TeamID
	}

	return &ProjectContext{
		App: AppInfo{
			ID:               app.ID,
			BuildNumber:      "1",
			MarketingVersion: "1.0.0",
			Name: AppName{
				Raw:         safeName,
				Kebab:       Slugify(safeName),
				UpperCamel:  StructName(safeName),
				DisplayName: DisplayName(safeName),
			},
			BundleID:         app.IOS.BundleID,
			DeploymentTarget: "17.0",
			TeamID:           teamID,
			CodeSign:         defaultCodeSigning(),
			Entitlements:     EntitlementsForDomains(tenant.Domains),
		},
		Tenant: TenantInfo{
			ID:   tenant.ID,
			Name: tenant.Name,
		},
		SDK: SDKInfo{
			Version: sdkVersion,
		},
		Template: TemplateInfo{
			Name: templateName,
		},
	}, nil
}

func defaultCodeSigning() CodeSigningSchemes {
	return CodeSigningSchemes{
		Debug: CodeSigning{
			Identity: "Apple Development",
			Required: "YES",
			Allowed:  "YES",
			Style:    "Automatic",
		},
		Release: CodeSigning{
			Identity: "Apple Distribution",
			Required: "YES",
			Allowed:  "YES",
			Style:    "Automatic",
		},
	}
}

// EntitlementsForDomains derives entitlement values from a tenant's domains.
// Domains are ordered by type so the most specific ones take priority in the
// generated entitlements file.
func EntitlementsForDomains(domains []api.TenantDomain) EntitlementSchemes {
	ordered := make([]api.TenantDomain, len(domains))
	copy(ordered, domains)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DomainType < ordered[j].DomainType
	})

	debug := make([]string, 0, len(ordered))
	release := make([]string, 0, len(ordered))
	for _, domain := range ordered {
		debug = append(debug, fmt.Sprintf("<string>webcredentials:%s?mode=developer</string>", domain.Host))
		release = append(release, fmt.Sprintf("<string>webcredentials:%s</string>", domain.Host))
	}

	return EntitlementSchemes{
		Debug: Entitlements{
			APSEnvironment:    "development",
			AssociatedDomains: strings.Join(debug, "\n\t\t"),
		},
		Release: Entitlements{
			APSEnvironment:    "production",
			AssociatedDomains: strings.Join(release, "\n\t\t"),
		},
	}
}
