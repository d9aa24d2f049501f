package messages

// CLI messages for user-facing commands.
const (
	// RootUse is the CLI command name.
	RootUse = "bctools"
	// RootShort is the short description for the root command.
	RootShort       = "Business Central pipeline tooling"
	RootLong        = "Build-pipeline helpers for Business Central extensions.\n\nEvery command reads its inputs from INPUT_<NAME> environment variables, the way Azure DevOps passes task inputs."
	RootVersionFlag = "Print version and exit"
	RootConfigFlag  = "Path to a TOML profile providing default inputs"
	RootEnvFileFlag = "Path to a .env file providing INPUT_* variables"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"
	VersionUse       = "version"
	VersionShort     = "Print version and exit"

	// PublishUse is the publish command name.
	PublishUse   = "publish"
	PublishShort = "Upload an extension package to a tenant and wait for installation"

	CompaniesUse   = "companies"
	CompaniesShort = "List the companies in an environment"
	CompaniesTitle = "Companies:"

	ModulesUse   = "modules"
	ModulesShort = "List the extensions installed for a company"
	ModulesTitle = "Modules:"

	DependenciesUse   = "dependencies"
	DependenciesShort = "Download the symbol packages an app.json depends on"

	// ListEntryFmt formats one numbered entry of a company or module listing.
	ListEntryFmt   = "%d. %s (ID: %s)"
	ListEmpty      = "No entries returned"
	ModuleNotFound = "requested module was not returned by the environment"

	ParametersHeaderFmt = "Invoking %s with the following parameters:"
	ParameterColumn     = 30

	StepToken       = "Acquiring token"
	StepTokenOK     = "Acquired token"
	StepLoginOnly   = "Authenticated correctly; invoked with TestLoginOnly, terminating gracefully"
	StepCompanies   = "Querying companies"
	StepModules     = "Querying modules"
	StepDownloading = "Downloading dependencies"
	StepPublish     = "Publishing extension"
	StepManifest    = "Reading app.json"

	PublishOutcomeFmt  = "Publish finished with outcome %s"
	ManifestSummaryFmt = "%-15s%s"
	ModuleNotFoundFmt  = "%w: %s"

	CommandLoadInputsFmt  = "load inputs: %w"
	CommandCreateTokenFmt = "create token source: %w"
)
