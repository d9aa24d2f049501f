package messages

// Dependency download messages.
const (
	DepsManifestNotFoundFmt = "%w: app.json not found at %s: %w"
	DepsManifestInvalidFmt  = "parse %s: %w"
	DepsCreateDirFmt        = "create packages directory %s: %w"
	DepsDownloadFmt         = "download %s (%s): %w"
	DepsWriteFmt            = "write %s: %w"
	DepsChmodFmt            = "chmod %s: %w"
	DepsListDirFmt          = "list %s: %w"

	DepsManifestLoaded   = "Loaded app.json"
	DepsAdding           = "Adding default dependency"
	DepsSkipping         = "Skipping default dependency already declared"
	DepsSkipDefaults     = "Skipping default dependency additions"
	DepsDownloading      = "Downloading package"
	DepsSaved            = "Package saved"
	DepsDownloadComplete = "Downloads complete"
	DepsChmod            = "Marking packages executable"
	DepsListingFmt       = "Files now in %s"
)
