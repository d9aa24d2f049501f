package messages

// Publish workflow messages.
const (
	PublishPhaseChanged         = "Publish phase changed"
	PublishBookmarkAcquired     = "Acquired extension upload bookmark"
	PublishBookmarkExists       = "Extension upload bookmark already exists; reusing it"
	PublishUploadConfirmed      = "Extension content uploaded"
	PublishUploadUncertain      = "Extension content accepted without confirmation; continuing"
	PublishInstallTriggered     = "Installation triggered"
	PublishStaleToken           = "Install trigger rejected with a stale concurrency token; refreshing bookmark"
	PublishContentNotReverified = "Retrying install with a refreshed etag; the uploaded content is not re-verified"
	PublishPollingSkipped       = "Skipping deployment status polling"
	PublishPolling              = "Polling deployment status"
	PublishStatus               = "Deployment status"
	PublishNoRecord             = "No deployment status record returned; the upload may have failed server-side"
	PublishTimedOut             = "Stopped polling before the deployment reached a terminal status"
	PublishFinished             = "Deployment finished"

	// PublishReadPackageFmt wraps ErrFileNotFound with the package path.
	PublishReadPackageFmt       = "%w: %s: %w"
	PublishRefreshBookmarkFmt   = "refresh bookmark after stale etag: %w"
	PublishRetryInstallFmt      = "trigger install after refreshing etag: %w"
	PublishInvalidTransitionFmt = "invalid publish phase transition %s -> %s"
)
