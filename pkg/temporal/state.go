package temporal

import (
	"github.com/dd0wney/cluso-dyncomm/pkg/classifier"
	"github.com/dd0wney/cluso-dyncomm/pkg/features"
)

// Phase is the detector phase a snapshot is processed in.
type Phase string

const (
	// PhaseBootstrap runs community detection and fits the classifier.
	// Only the first snapshot of a run is processed in this phase.
	PhaseBootstrap Phase = "bootstrap"

	// PhasePredict labels nodes with the frozen classifier.
	PhasePredict Phase = "predict"
)

// Stage names one unit of work inside a step.
type Stage string

const (
	StageExtract   Stage = "extract"
	StagePartition Stage = "partition"
	StageFit       Stage = "fit"
	StagePredict   Stage = "predict"
	StageScore     Stage = "score"
)

// State is the accumulator threaded through Step. It is either Initial or
// Tracking; no other implementations exist.
type State[K comparable] interface {
	// Next returns the 1-based index of the next snapshot to process.
	Next() int
	// Phase returns the phase the next snapshot will be processed in.
	Phase() Phase

	state()
}

// Initial is the state before any snapshot has been processed.
type Initial[K comparable] struct{}

// Next implements State.
func (Initial[K]) Next() int { return 1 }

// Phase implements State.
func (Initial[K]) Phase() Phase { return PhaseBootstrap }

func (Initial[K]) state() {}

// Tracking is the state after the bootstrap snapshot. It holds the frozen
// model and the profile of the previously processed snapshot.
type Tracking[K comparable] struct {
	next  int
	model *classifier.Model
	prev  *features.Profile[K]
}

// Next implements State.
func (t Tracking[K]) Next() int { return t.next }

// Phase implements State.
func (Tracking[K]) Phase() Phase { return PhasePredict }

// Model returns the classifier fitted on the bootstrap snapshot.
func (t Tracking[K]) Model() *classifier.Model { return t.model }

// Previous returns the structural profile of the last processed snapshot.
func (t Tracking[K]) Previous() *features.Profile[K] { return t.prev }

func (Tracking[K]) state() {}
