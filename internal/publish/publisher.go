// Package publish drives an extension package into a Business Central
// environment: acquire an upload bookmark, upload the bytes, trigger the
// installation, and poll the deployment status until it settles.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/clock"
	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
	"github.com/bctools/bctools/internal/retry"
)

// GracePeriod is waited before the first status poll so the server can
// register the installation.
const GracePeriod = 2 * time.Second

// API is the subset of the extension management API a Publisher needs.
// *bcapi.Client satisfies it.
type API interface {
	CreateBookmark(ctx context.Context, companyID string, schedule bcapi.Schedule, mode bcapi.SyncMode) (bcapi.Bookmark, error)
	Bookmark(ctx context.Context, companyID string) (bcapi.Bookmark, error)
	UploadContent(ctx context.Context, companyID string, bookmark bcapi.Bookmark, content []byte) (bool, error)
	TriggerInstall(ctx context.Context, companyID string, bookmark bcapi.Bookmark) error
	DeploymentStatuses(ctx context.Context, companyID string) ([]bcapi.DeploymentStatus, error)
}

// Config wires a Publisher to its collaborators.
type Config struct {
	API       API
	CompanyID string
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Logger defaults to a discarding logger.
	Logger logging.Logger
}

// Publisher runs publish operations against one company.
type Publisher struct {
	api       API
	companyID string
	clock     clock.Clock
	logger    logging.Logger
}

// New returns a Publisher for cfg.
func New(cfg Config) *Publisher {
	p := &Publisher{
		api:       cfg.API,
		companyID: cfg.CompanyID,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
	if p.clock == nil {
		p.clock = clock.Real()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// AcquireOrCreateBookmark creates the upload bookmark, or reads the existing
// one when the server reports it already exists. schedule and syncMode may
// be empty to select the defaults; unknown values fail with
// bcapi.ErrInvalidArgument before any request is sent.
func (p *Publisher) AcquireOrCreateBookmark(ctx context.Context, schedule, syncMode string) (bcapi.Bookmark, error) {
	s, err := bcapi.ParseSchedule(schedule)
	if err != nil {
		return bcapi.Bookmark{}, err
	}
	m, err := bcapi.ParseSyncMode(syncMode)
	if err != nil {
		return bcapi.Bookmark{}, err
	}

	bookmark, err := p.api.CreateBookmark(ctx, p.companyID, s, m)
	if err != nil {
		if !bcapi.IsEntityExists(err) {
			return bcapi.Bookmark{}, err
		}
		p.logger.Info(messages.PublishBookmarkExists)
		bookmark, err = p.api.Bookmark(ctx, p.companyID)
		if err != nil {
			return bcapi.Bookmark{}, err
		}
	}
	p.logger.Info(messages.PublishBookmarkAcquired, "systemId", bookmark.SystemID, "schedule", string(s), "schemaSyncMode", string(m))
	return bookmark, nil
}

// UploadFile sends the package at path into bookmark. It reports true when
// the server confirmed the upload and false when it accepted the body
// without confirmation. A missing or unreadable file fails with
// bcapi.ErrFileNotFound before any request is sent.
func (p *Publisher) UploadFile(ctx context.Context, bookmark bcapi.Bookmark, path string) (bool, error) {
	content, err := readPackage(path)
	if err != nil {
		return false, err
	}
	return p.upload(ctx, bookmark, content)
}

func readPackage(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.PublishReadPackageFmt, bcapi.ErrFileNotFound, path, err)
	}
	return content, nil
}

func (p *Publisher) upload(ctx context.Context, bookmark bcapi.Bookmark, content []byte) (bool, error) {
	confirmed, err := p.api.UploadContent(ctx, p.companyID, bookmark, content)
	if err != nil {
		return false, err
	}
	if confirmed {
		p.logger.Info(messages.PublishUploadConfirmed, "bytes", len(content))
	} else {
		p.logger.Warn(messages.PublishUploadUncertain, "bytes", len(content))
	}
	return confirmed, nil
}

// TriggerInstall starts the installation of the uploaded package. When the
// server rejects the bookmark's etag as stale, the bookmark is read again
// and the call retried exactly once; a second failure is returned as
// bcapi.ErrRemoteRequestFailed. The returned bookmark carries the etag that
// was last used.
func (p *Publisher) TriggerInstall(ctx context.Context, bookmark bcapi.Bookmark) (bcapi.Bookmark, error) {
	err := p.api.TriggerInstall(ctx, p.companyID, bookmark)
	if err == nil {
		p.logger.Info(messages.PublishInstallTriggered, "systemId", bookmark.SystemID)
		return bookmark, nil
	}
	if !errors.Is(err, bcapi.ErrStaleConcurrencyToken) {
		return bookmark, err
	}

	p.logger.Warn(messages.PublishStaleToken, "systemId", bookmark.SystemID)
	fresh, err := p.api.Bookmark(ctx, p.companyID)
	if err != nil {
		return bookmark, fmt.Errorf(messages.PublishRefreshBookmarkFmt, err)
	}
	p.logger.Warn(messages.PublishContentNotReverified, "systemId", fresh.SystemID)
	if err := p.api.TriggerInstall(ctx, p.companyID, fresh); err != nil {
		return fresh, fmt.Errorf(messages.PublishRetryInstallFmt, err)
	}
	p.logger.Info(messages.PublishInstallTriggered, "systemId", fresh.SystemID)
	return fresh, nil
}

// PollOptions controls PollStatus.
type PollOptions struct {
	Interval time.Duration
	MaxWait  time.Duration
	// Since is the reference point for MaxWait. Zero means the moment
	// PollStatus is called.
	Since time.Time
}

// PollResult is the last status observed by PollStatus.
type PollResult struct {
	Status   string
	Outcome  Outcome
	Attempts int
	Elapsed  time.Duration
}

// PollStatus waits GracePeriod, then reads the deployment status every
// Interval until it leaves InProgress, no record is returned, or MaxWait is
// spent. Only the first (most recent) record is considered.
func (p *Publisher) PollStatus(ctx context.Context, opts PollOptions) (PollResult, error) {
	var (
		status   string
		noRecord bool
	)
	p.logger.Info(messages.PublishPolling, "interval", opts.Interval, "maxWait", opts.MaxWait)
	res, err := retry.Poll(ctx, p.clock, retry.Schedule{
		InitialDelay: GracePeriod,
		Interval:     opts.Interval,
		Timeout:      opts.MaxWait,
		Since:        opts.Since,
	}, func(ctx context.Context) (bool, error) {
		statuses, err := p.api.DeploymentStatuses(ctx, p.companyID)
		if err != nil {
			return false, err
		}
		if len(statuses) == 0 {
			noRecord = true
			return true, nil
		}
		latest := statuses[0]
		status = latest.Status
		p.logger.Info(messages.PublishStatus, "status", latest.Status, "name", latest.Name, "appVersion", latest.AppVersion)
		return !strings.EqualFold(status, bcapi.StatusInProgress), nil
	})

	result := PollResult{Status: status, Attempts: res.Attempts, Elapsed: res.Elapsed}
	if err != nil {
		return result, err
	}
	switch {
	case noRecord:
		result.Outcome = OutcomeNoRecordFound
		p.logger.Warn(messages.PublishNoRecord)
	case res.TimedOut:
		result.Outcome = OutcomeTimedOut
		p.logger.Warn(messages.PublishTimedOut, "status", status, "elapsed", res.Elapsed)
	default:
		result.Outcome = classify(status)
	}
	return result, nil
}

// Request describes one publish run.
type Request struct {
	AppFilePath string
	Schedule    string
	SyncMode    string
	SkipPolling bool
	Poll        PollOptions
}

// Result summarizes a publish run. On a hard failure Phase is the last
// phase reached.
type Result struct {
	Bookmark bcapi.Bookmark
	// Confirmed reports whether the server confirmed the upload.
	Confirmed bool
	Status    string
	Outcome   Outcome
	Phase     Phase
	Attempts  int
	Elapsed   time.Duration
}

// Publish runs the whole sequence. Every terminal outcome, including a
// reported failure or a timeout, returns a nil error; errors are reserved
// for hard failures. The polling budget is measured from the start of the
// run unless req.Poll.Since says otherwise.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	start := p.clock.Now()
	result := Result{Phase: PhasePending}
	advance := func(next Phase) error {
		phase, err := result.Phase.advance(next)
		if err != nil {
			return err
		}
		result.Phase = phase
		p.logger.Debug(messages.PublishPhaseChanged, "phase", phase.String())
		return nil
	}

	content, err := readPackage(req.AppFilePath)
	if err != nil {
		return result, err
	}

	bookmark, err := p.AcquireOrCreateBookmark(ctx, req.Schedule, req.SyncMode)
	if err != nil {
		return result, err
	}
	result.Bookmark = bookmark
	if err := advance(PhaseCreated); err != nil {
		return result, err
	}

	if err := advance(PhaseUploading); err != nil {
		return result, err
	}
	result.Confirmed, err = p.upload(ctx, bookmark, content)
	if err != nil {
		return result, err
	}
	if err := advance(PhaseUploaded); err != nil {
		return result, err
	}

	result.Bookmark, err = p.TriggerInstall(ctx, bookmark)
	if err != nil {
		return result, err
	}
	if err := advance(PhaseInstallTriggered); err != nil {
		return result, err
	}

	if req.SkipPolling {
		p.logger.Info(messages.PublishPollingSkipped)
		result.Outcome = OutcomeNotPolled
		result.Elapsed = p.clock.Now().Sub(start)
		return result, advance(PhaseDone)
	}

	if err := advance(PhasePolling); err != nil {
		return result, err
	}
	opts := req.Poll
	if opts.Since.IsZero() {
		opts.Since = start
	}
	polled, err := p.PollStatus(ctx, opts)
	result.Status = polled.Status
	result.Attempts = polled.Attempts
	result.Elapsed = polled.Elapsed
	if err != nil {
		return result, err
	}
	result.Outcome = polled.Outcome
	p.logger.Info(messages.PublishFinished, "outcome", string(result.Outcome), "status", result.Status, "elapsed", result.Elapsed)
	return result, advance(PhaseDone)
}
