// Package detector decides which listing entries are new compared to the
// persisted baseline.
package detector

import (
	"github.com/bassista/newswatch/internal/extractor"
	"github.com/bassista/newswatch/internal/repository"
)

// Kind classifies a Decision.
type Kind int

const (
	NoChange Kind = iota
	NewPeriod
	EntriesAdded
	// EntriesRemoved means the remote count went down for the same period.
	// Nothing is notified; the baseline is re-synced to the lower count.
	EntriesRemoved
)

func (k Kind) String() string {
	switch k {
	case NoChange:
		return "no-change"
	case NewPeriod:
		return "new-period"
	case EntriesAdded:
		return "entries-added"
	case EntriesRemoved:
		return "entries-removed"
	default:
		return "unknown"
	}
}

// Listing is what was observed on the remote side in this run, newest first.
type Listing struct {
	PeriodKey string
	Entries   []extractor.Entry
}

// Decision is the outcome of comparing a Listing with a Baseline.
type Decision struct {
	Kind Kind
	// Delta holds the entries to notify, newest first. Empty for NoChange
	// and EntriesRemoved.
	Delta []extractor.Entry
	// DeltaSize is len(current) - baseline count for the same period. It is
	// negative for EntriesRemoved and equals len(current) for NewPeriod.
	DeltaSize int
	// Next is the baseline to persist once the decision has been acted on.
	Next repository.Baseline
}

// Notifies reports whether the decision calls for a notification.
func (d Decision) Notifies() bool {
	return d.Kind == NewPeriod || d.Kind == EntriesAdded
}

// Persists reports whether the decision changes the stored baseline.
func (d Decision) Persists() bool {
	return d.Kind != NoChange
}

// Decide compares the current listing against the stored baseline.
//
// A different period key (including an empty baseline) makes the whole
// listing new. For the same key, the newest len(current)-count entries are
// new. A shrinking listing is reported as EntriesRemoved with no delta.
func Decide(current Listing, baseline repository.Baseline) Decision {
	next := repository.Baseline{Date: current.PeriodKey, NewsItemCount: len(current.Entries)}

	if current.PeriodKey != baseline.Date {
		return Decision{
			Kind:      NewPeriod,
			Delta:     current.Entries,
			DeltaSize: len(current.Entries),
			Next:      next,
		}
	}

	deltaSize := len(current.Entries) - baseline.NewsItemCount
	switch {
	case deltaSize == 0:
		return Decision{Kind: NoChange, Next: baseline}
	case deltaSize < 0:
		return Decision{Kind: EntriesRemoved, Delta: []extractor.Entry{}, DeltaSize: deltaSize, Next: next}
	default:
		return Decision{
			Kind:      EntriesAdded,
			Delta:     current.Entries[:deltaSize],
			DeltaSize: deltaSize,
			Next:      next,
		}
	}
}
