// Package generator defines the contract every command-generation backend
// implements (§4.1) along with the request/response data model shared by
// the static matcher, the embedded inference engine and the remote
// generators.
package generator

import (
	"time"

	"github.com/siryoos/caro/internal/platform"
)

// RiskLevel is a totally ordered classification assigned by the safety
// validator to a specific candidate command. Ordering matters: callers
// compare levels with plain < / >= against a policy threshold.
type RiskLevel int

const (
	Safe RiskLevel = iota
	Low
	Moderate
	High
	Critical
)

func (r RiskLevel) String() string {
	switch r {
	case Safe:
		return "safe"
	case Low:
		return "low"
	case Moderate:
		return "moderate"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// SafetyLevel is the caller's tolerance setting; it determines where on the
// RiskLevel scale the validator starts blocking.
type SafetyLevel int

const (
	StrictPolicy SafetyLevel = iota
	ModeratePolicy              // default
	PermissivePolicy
)

func (s SafetyLevel) String() string {
	switch s {
	case StrictPolicy:
		return "strict"
	case ModeratePolicy:
		return "moderate"
	case PermissivePolicy:
		return "permissive"
	default:
		return "unknown"
	}
}

// Request carries one natural-language translation request. It is
// immutable once constructed — callers build a new Request per turn.
type Request struct {
	Input    string // non-empty, <= 4KiB
	Shell    platform.Shell
	Safety   SafetyLevel
	Context  string // optional free-form context
	Backend  string // optional backend preference, by id
}

// MaxInputBytes is the hard ceiling on Request.Input, per spec.
const MaxInputBytes = 4 * 1024

// Command is the output carrier handed back to the caller. Ownership
// transfers fully — nothing in this package retains a reference after
// Generate returns.
type Command struct {
	Command           string
	Explanation       string
	Risk              RiskLevel
	EstimatedImpact   string
	Alternatives      []string
	BackendUsed       string
	GenerationTime    time.Duration
	Confidence        float64 // in [0,1]
}

// Info describes a generator's static capabilities; it is pure (no I/O).
type Info struct {
	Kind              string
	ModelName         string
	SupportsStreaming bool
	MaxTokens         int
	TypicalLatencyMs  int64
	MemoryMB          int64
	Version           string
}
