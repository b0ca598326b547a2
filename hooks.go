package cacheaside

import "time"

// Outcome is how a single Execute was served.
type Outcome uint8

const (
	OutcomeBypass   Outcome = iota // no key, or template disabled
	OutcomeFailOpen                // store read failed; computed directly
	OutcomeMiss                    // no entry; computed and insert scheduled
	OutcomeHit                     // fresh entry returned
	OutcomeRefresh                 // expired entry recomputed; replace scheduled
	OutcomeStale                   // expired entry returned after recompute failed
	OutcomeError                   // computation error returned to the caller
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBypass:
		return "bypass"
	case OutcomeFailOpen:
		return "fail_open"
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeRefresh:
		return "refresh"
	case OutcomeStale:
		return "stale"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; Served runs on every Execute.
// Write* hooks run on pool workers.
type Hooks interface {
	// Served reports the path taken by an Execute. key is "" for bypass.
	Served(key string, o Outcome)

	// Store read failed; the template failed open.
	StoreReadFailed(key string, err error)

	// An expired value was returned because recomputation failed.
	StaleServed(key string, age time.Duration, err error)

	// A write could not be queued (pool saturated or closed).
	WriteDropped(key string, isUpdate bool, err error)

	// A queued write reached the store and failed.
	WriteFailed(key string, isUpdate bool, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Served(string, Outcome)                   {}
func (NopHooks) StoreReadFailed(string, error)            {}
func (NopHooks) StaleServed(string, time.Duration, error) {}
func (NopHooks) WriteDropped(string, bool, error)         {}
func (NopHooks) WriteFailed(string, bool, error)          {}
