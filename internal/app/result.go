package app

import (
	"fmt"

	"github.com/bassista/newswatch/internal/detector"
	"github.com/bassista/newswatch/internal/extractor"
)

// Outcome summarizes how a run ended.
type Outcome int

const (
	Failed Outcome = iota
	NotConfigured
	PeriodMissing
	Unchanged
	Notified
	Resynced
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case NotConfigured:
		return "not-configured"
	case PeriodMissing:
		return "period-missing"
	case Unchanged:
		return "unchanged"
	case Notified:
		return "notified"
	case Resynced:
		return "resynced"
	default:
		return "unknown"
	}
}

// Result describes a finished run.
type Result struct {
	Outcome   Outcome
	PeriodKey string
	URL       string
	Decision  detector.Kind
	Notified  int
}

// Delta is what gets handed to the notifier: the entries considered new
// since the last successful notification.
type Delta struct {
	PeriodKey string
	TargetURL string
	Entries   []extractor.Entry
}

// Stage names the pipeline step a RunError came from.
type Stage string

const (
	StageLoad    Stage = "load"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageNotify  Stage = "notify"
	StageSave    Stage = "save"
)

// RunError wraps the failure that aborted a run.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
