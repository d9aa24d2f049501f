package publish

import (
	"fmt"
	"strings"

	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/messages"
)

// Phase is the position of a publish run in its fixed sequence.
type Phase int

const (
	// PhasePending is a run that has not acquired a bookmark yet.
	PhasePending Phase = iota
	PhaseCreated
	PhaseUploading
	PhaseUploaded
	PhaseInstallTriggered
	PhasePolling
	// PhaseDone is reached once the run has an Outcome.
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhasePending:          "Pending",
	PhaseCreated:          "Created",
	PhaseUploading:        "Uploading",
	PhaseUploaded:         "Uploaded",
	PhaseInstallTriggered: "InstallTriggered",
	PhasePolling:          "Polling",
	PhaseDone:             "Done",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// canAdvance reports whether a run may move from p to next. Phases advance
// one step at a time; the only shortcut is InstallTriggered to Done when
// polling is skipped.
func (p Phase) canAdvance(next Phase) bool {
	if next == p+1 && next <= PhaseDone {
		return true
	}
	return p == PhaseInstallTriggered && next == PhaseDone
}

func (p Phase) advance(next Phase) (Phase, error) {
	if !p.canAdvance(next) {
		return p, fmt.Errorf(messages.PublishInvalidTransitionFmt, p, next)
	}
	return next, nil
}

// Outcome is how a publish run ended without a hard failure.
type Outcome string

const (
	OutcomeSucceeded     Outcome = "Succeeded"
	OutcomeFailed        Outcome = "Failed"
	OutcomeTimedOut      Outcome = "TimedOut"
	OutcomeNoRecordFound Outcome = "NoRecordFound"
	// OutcomeNotPolled ends a run whose caller skipped polling.
	OutcomeNotPolled Outcome = "NotPolled"
)

// classify maps a terminal deployment status reported by the server.
func classify(status string) Outcome {
	switch {
	case strings.EqualFold(status, bcapi.StatusInProgress):
		return OutcomeTimedOut
	case strings.EqualFold(status, "Completed"),
		strings.EqualFold(status, "Succeeded"),
		strings.EqualFold(status, "Success"):
		return OutcomeSucceeded
	default:
		return OutcomeFailed
	}
}
