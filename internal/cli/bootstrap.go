package cli

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parra-inc/parra-cli/internal/api"
	"github.com/parra-inc/parra-cli/internal/config"
	"github.com/parra-inc/parra-cli/internal/scaffold"
)

var (
	appNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)
	bundleIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+){2,}$`)
)

// tenantAPI is the slice of the API client the bootstrap flow needs.
type tenantAPI interface {
	GetTenant(ctx context.Context, tenantID string) (*api.Tenant, error)
	ListTenants(ctx context.Context) ([]api.Tenant, error)
	CreateTenant(ctx context.Context, name string) (*api.Tenant, error)
	GetApplication(ctx context.Context, tenantID, applicationID string) (*api.Application, error)
	ListApplications(ctx context.Context, tenantID string) ([]api.Application, error)
	CreateApplication(ctx context.Context, tenantID, name, bundleID string) (*api.Application, error)
}

type bootstrapOptions struct {
	tenantID      string
	applicationID string
	projectPath   string
	templateName  string
}

func newBootstrapCmd() *cobra.Command {
	opts := &bootstrapOptions{}

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Generate a new iOS project",
		Long: `Generate a new iOS project connected to your Parra workspace.

You will be guided through selecting (or creating) a workspace and an
application, then a ready-to-build Xcode project is generated for you.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := newSession(false)
			client := api.NewClient(session, "")
			reporter := api.NewReporter(session, "")

			return runBootstrap(cmd.Context(), client, reporter, surveyPrompter{}, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tenantID, "workspace-id", "w", "", "Workspace (tenant) ID to bootstrap in")
	cmd.Flags().StringVarP(&opts.applicationID, "application-id", "a", "", "Application ID to bootstrap")
	cmd.Flags().StringVarP(&opts.projectPath, "project-path", "p", "", "Directory to generate the project in")
	cmd.Flags().StringVarP(&opts.templateName, "template", "t", "default", "Project template to use")

	return cmd
}

func runBootstrap(ctx context.Context, client tenantAPI, reporter *api.Reporter, p prompter, opts *bootstrapOptions) error {
	reporter.Send("cli_bootstrap_started", nil)

	tenant, err := selectTenant(ctx, client, p, reporter, opts.tenantID)
	if err != nil {
		return err
	}
	reporter.Send("cli_bootstrap_tenant_selected", map[string]string{"tenant_id": tenant.ID})

	app, err := selectApplication(ctx, client, p, reporter, tenant, opts.applicationID)
	if err != nil {
		return err
	}
	reporter.Send("cli_bootstrap_application_selected", map[string]string{"application_id": app.ID})

	if cfg, err := config.Load(); err == nil {
		_ = cfg.AddTenant(config.TenantInfo{
			ID:       tenant.ID,
			Name:     tenant.Name,
			LastUsed: time.Now().Format(time.RFC3339),
		})
		_ = cfg.SetCurrentTenant(tenant.ID)
	}

	projectPath := opts.projectPath
	if projectPath == "" {
		defaultPath := "./" + scaffold.Slugify(scaffold.SanitizeName(app.Name))
		projectPath, err = p.Input(
			"Where would you like to create your project?",
			fmt.Sprintf("defaults to %s", defaultPath),
			defaultPath,
			nonEmpty("project path"),
		)
		if err != nil {
			return err
		}
	}

	projectDir, err := scaffold.NormalizeProjectPath(projectPath, scaffold.SanitizeName(app.Name))
	if err != nil {
		return err
	}

	pctx, err := scaffold.BuildContext(tenant, app, opts.templateName, version)
	if err != nil {
		return err
	}

	if err := scaffold.EnsureTools(ctx, nil); err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Suffix = " Fetching project template..."
	spin.Start()

	fetcher := scaffold.NewFetcher(nil)
	templateDir, err := fetcher.FetchRemote(ctx, version, opts.templateName)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("failed to fetch template: %w", err)
	}
	reporter.Send("cli_bootstrap_template_cloned", nil)
	Debug("Template fetched to %s", templateDir)

	generator := scaffold.NewGenerator(nil, colorOutput)
	if _, err := generator.Generate(ctx, projectDir, templateDir, pctx); err != nil {
		reporter.Send("cli_bootstrap_failed", nil)
		return fmt.Errorf("failed to generate project: %w", err)
	}
	reporter.Send("cli_bootstrap_project_generated", nil)

	Success("Parra project generated at %s!", projectDir)
	printNextSteps(tenant)

	autoOpen := true
	if cfg, err := config.Load(); err == nil {
		autoOpen = cfg.Preferences.AutoOpenProject
	}
	if autoOpen {
		if err := generator.OpenProject(ctx, projectDir, pctx); err == nil {
			reporter.Send("cli_bootstrap_project_opened", nil)
		}
	}

	reporter.Send("cli_bootstrap_succeeded", nil)
	return nil
}

// selectTenant resolves the workspace to bootstrap in: a provided ID wins,
// then an existing workspace is offered, and creating a new one is the
// fallback.
func selectTenant(ctx context.Context, client tenantAPI, p prompter, reporter *api.Reporter, tenantID string) (*api.Tenant, error) {
	if tenantID != "" {
		reporter.Send("cli_bootstrap_tenant_provided", map[string]string{"tenant_id": tenantID})
		return client.GetTenant(ctx, tenantID)
	}

	tenants, err := client.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	if len(tenants) == 0 {
		return createTenant(ctx, client, p, "No existing workspaces found. What would you like to call your workspace?")
	}

	reporter.Send("cli_bootstrap_tenant_existed", nil)

	if len(tenants) == 1 {
		tenant := tenants[0]
		useOnly, err := p.Confirm(
			fmt.Sprintf("Do you want to use the workspace %q (%s)?", tenant.Name, tenant.ID),
			"", true,
		)
		if err != nil {
			return nil, err
		}
		if useOnly {
			return &tenant, nil
		}
		return createTenant(ctx, client, p, "What would you like to call your workspace?")
	}

	useExisting, err := p.Confirm("Would you like to use an existing workspace?", "", true)
	if err != nil {
		return nil, err
	}
	if !useExisting {
		return createTenant(ctx, client, p, "What would you like to call your workspace?")
	}

	options := make([]string, len(tenants))
	for i, tenant := range tenants {
		options[i] = fmt.Sprintf("%s (Workspace ID: %s)", tenant.Name, tenant.ID)
	}
	index, err := p.Select("Please select a workspace", options)
	if err != nil {
		return nil, err
	}
	return &tenants[index], nil
}

func createTenant(ctx context.Context, client tenantAPI, p prompter, message string) (*api.Tenant, error) {
	name, err := p.Input(message, "", "", nonEmpty("workspace name"))
	if err != nil {
		return nil, err
	}
	return client.CreateTenant(ctx, strings.TrimSpace(name))
}

// selectApplication mirrors selectTenant for the application under a tenant.
func selectApplication(ctx context.Context, client tenantAPI, p prompter, reporter *api.Reporter, tenant *api.Tenant, applicationID string) (*api.Application, error) {
	if applicationID != "" {
		reporter.Send("cli_bootstrap_application_provided", map[string]string{"application_id": applicationID})
		return client.GetApplication(ctx, tenant.ID, applicationID)
	}

	apps, err := client.ListApplications(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	if len(apps) == 0 {
		return createApplication(ctx, client, p, tenant)
	}

	reporter.Send("cli_bootstrap_application_existed", nil)

	if len(apps) == 1 {
		app := apps[0]
		useOnly, err := p.Confirm(
			fmt.Sprintf("Do you want to use the application %q (%s)?", app.Name, app.ID),
			"", true,
		)
		if err != nil {
			return nil, err
		}
		if useOnly {
			return &app, nil
		}
		return createApplication(ctx, client, p, tenant)
	}

	useExisting, err := p.Confirm(
		"Would you like to use an existing application?",
		"We found existing applications that you can use. If you choose not to use them, a new application will be created.",
		true,
	)
	if err != nil {
		return nil, err
	}
	if !useExisting {
		return createApplication(ctx, client, p, tenant)
	}

	options := make([]string, len(apps))
	for i, app := range apps {
		if app.IOS != nil {
			options[i] = fmt.Sprintf("%s (%s)", app.Name, app.IOS.BundleID)
		} else {
			options[i] = app.Name
		}
	}
	index, err := p.Select("Please select an application", options)
	if err != nil {
		return nil, err
	}
	return &apps[index], nil
}

func createApplication(ctx context.Context, client tenantAPI, p prompter, tenant *api.Tenant) (*api.Application, error) {
	name, err := p.Input("What would you like to call your application?", "", "", validateAppName)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	suggested := suggestBundleID(tenant.Name, name)
	bundleID, err := p.Input(
		"What would you like your bundle ID to be?",
		fmt.Sprintf("defaults to %s", suggested),
		suggested,
		validateBundleID,
	)
	if err != nil {
		return nil, err
	}

	return client.CreateApplication(ctx, tenant.ID, name, strings.TrimSpace(bundleID))
}

func suggestBundleID(tenantName, appName string) string {
	return fmt.Sprintf("com.%s.%s", scaffold.Slugify(tenantName), scaffold.Slugify(appName))
}

func validateAppName(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("the app name cannot be empty")
	}
	if !appNamePattern.MatchString(input) {
		return fmt.Errorf("the app name must contain only alphanumeric characters (A-Z, a-z, and 0-9), hyphens (-), and spaces")
	}
	return nil
}

func validateBundleID(input string) error {
	if len(input) < 5 {
		return fmt.Errorf("the bundle ID must be at least 5 characters (x.y.z)")
	}
	if len(input) > 155 {
		return fmt.Errorf("the bundle ID must be at most 155 characters")
	}
	if !bundleIDPattern.MatchString(input) {
		return fmt.Errorf("the bundle ID must contain only alphanumeric characters (A-Z, a-z, and 0-9), hyphens (-), and periods (.), typically in reverse-DNS format")
	}
	return nil
}

func nonEmpty(what string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("the %s cannot be empty", what)
		}
		return nil
	}
}

func printNextSteps(tenant *api.Tenant) {
	dashboard := fmt.Sprintf("https://parra.io/tenants/%s", tenant.ID)
	fmt.Fprintln(colorOutput)
	fmt.Fprintf(colorOutput, "Configure your project in the dashboard: %s\n", color.CyanString(dashboard))
	fmt.Fprintf(colorOutput, "Read the docs: %s\n", color.CyanString("https://docs.parra.io/sdks/ios/configuration"))
	fmt.Fprintf(colorOutput, "Reach out if you need help: %s\n", color.CyanString("help@parra.io"))
}
