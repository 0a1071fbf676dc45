// Package temporal tracks communities across an ordered sequence of graph
// snapshots.
//
// The first snapshot is partitioned with a modularity-maximizing community
// detection routine and a classifier is fitted on the per-node structural
// features of that snapshot. Every later snapshot is labelled by the frozen
// classifier from features alone, so detection runs exactly once per
// sequence. Each snapshot yields a Record with its partition and modularity.
//
// Processing is an explicit fold: Step takes a State and a snapshot and
// returns the next State with the snapshot's Record. Run and Records drive
// that fold over a whole sequence.
package temporal

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-dyncomm/pkg/algorithms"
	"github.com/dd0wney/cluso-dyncomm/pkg/classifier"
	"github.com/dd0wney/cluso-dyncomm/pkg/features"
	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
	"github.com/dd0wney/cluso-dyncomm/pkg/metrics"
	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
)

// Config configures a Detector.
type Config struct {
	// Seed drives every randomized component of a run: the classifier and
	// randomized partitioners. It overrides Forest.Seed.
	Seed uint64

	// Forest configures the membership classifier.
	Forest classifier.Config

	// Partitioner names the bootstrap community detection routine
	// (algorithms.PartitionerGreedy or algorithms.PartitionerLouvain).
	Partitioner string

	// Resolution is the modularity resolution used by the partitioner.
	// <= 0 means 1.0.
	Resolution float64

	// Workers bounds per-snapshot parallelism (<= 0 means GOMAXPROCS).
	Workers int

	// RunID identifies the run in logs. Empty means a random UUID.
	RunID string

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		Seed:        42,
		Forest:      classifier.DefaultConfig(),
		Partitioner: algorithms.PartitionerGreedy,
		Resolution:  1.0,
	}
}

// Detector runs the bootstrap-then-predict pipeline. A Detector holds no
// per-run state; all of it lives in the State values passed to Step, so one
// Detector may drive several sequences concurrently.
type Detector[K comparable] struct {
	runID       string
	forest      *classifier.Forest
	partitioner algorithms.Partitioner
	extractor   *features.Extractor[K]
	log         logging.Logger
	metrics     *metrics.Registry
}

// New creates a detector from cfg.
func New[K comparable](cfg Config) (*Detector[K], error) {
	partitioner, err := algorithms.NewPartitioner(cfg.Partitioner, cfg.Resolution, cfg.Seed)
	if err != nil {
		return nil, err
	}

	forestCfg := cfg.Forest
	forestCfg.Seed = cfg.Seed
	if forestCfg.Workers == 0 {
		forestCfg.Workers = cfg.Workers
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	return &Detector[K]{
		runID:       runID,
		forest:      classifier.NewForest(forestCfg),
		partitioner: partitioner,
		extractor:   features.NewExtractor[K](cfg.Workers),
		log:         log.With(logging.Component("temporal"), logging.RunID(runID)),
		metrics:     reg,
	}, nil
}

// RunID returns the identifier attached to this detector's logs.
func (d *Detector[K]) RunID() string {
	return d.runID
}

// Step processes one snapshot. A nil state is treated as Initial. On error
// the input state is returned unchanged.
func (d *Detector[K]) Step(state State[K], s *snapshot.Snapshot[K]) (State[K], Record[K], error) {
	if state == nil {
		state = Initial[K]{}
	}
	if s == nil {
		return state, Record[K]{}, &StepError{Snapshot: state.Next(), Phase: state.Phase(), Cause: ErrNilSnapshot}
	}

	switch st := state.(type) {
	case Initial[K]:
		return d.bootstrap(s)
	case Tracking[K]:
		return d.predict(st, s)
	default:
		return state, Record[K]{}, &StepError{Snapshot: state.Next(), Phase: state.Phase(), Cause: ErrUnknownState}
	}
}

func (d *Detector[K]) bootstrap(s *snapshot.Snapshot[K]) (State[K], Record[K], error) {
	const index = 1
	start := time.Now()
	fail := func(stage Stage, err error) (State[K], Record[K], error) {
		return Initial[K]{}, Record[K]{}, &StepError{Snapshot: index, Phase: PhaseBootstrap, Stage: stage, Cause: err}
	}

	var (
		set     *features.Set[K]
		profile *features.Profile[K]
		part    algorithms.Partition
		model   *classifier.Model
	)

	err := d.stage(StageExtract, func() (err error) {
		set, profile, err = d.extractor.Extract(s, nil)
		return err
	})
	if err != nil {
		return fail(StageExtract, err)
	}

	err = d.stage(StagePartition, func() (err error) {
		part, err = d.partitioner.Partition(s)
		return err
	})
	if err != nil {
		return fail(StagePartition, err)
	}

	err = d.stage(StageFit, func() (err error) {
		model, err = d.forest.Fit(set.Matrix(), part.Labels())
		return err
	})
	if err != nil {
		return fail(StageFit, err)
	}

	rec := d.record(index, PhaseBootstrap, s, part, start)
	return Tracking[K]{next: index + 1, model: model, prev: profile}, rec, nil
}

func (d *Detector[K]) predict(st Tracking[K], s *snapshot.Snapshot[K]) (State[K], Record[K], error) {
	index := st.next
	start := time.Now()
	fail := func(stage Stage, err error) (State[K], Record[K], error) {
		return st, Record[K]{}, &StepError{Snapshot: index, Phase: PhasePredict, Stage: stage, Cause: err}
	}

	var (
		set     *features.Set[K]
		profile *features.Profile[K]
		labels  []int
	)

	err := d.stage(StageExtract, func() (err error) {
		set, profile, err = d.extractor.Extract(s, st.prev)
		return err
	})
	if err != nil {
		return fail(StageExtract, err)
	}

	err = d.stage(StagePredict, func() (err error) {
		labels, err = st.model.Predict(set.Matrix())
		return err
	})
	if err != nil {
		return fail(StagePredict, err)
	}

	rec := d.record(index, PhasePredict, s, algorithms.NewPartition(labels), start)
	return Tracking[K]{next: index + 1, model: st.model, prev: profile}, rec, nil
}

// record scores p on s and assembles the snapshot's Record.
func (d *Detector[K]) record(index int, phase Phase, s *snapshot.Snapshot[K], p algorithms.Partition, start time.Time) Record[K] {
	var (
		q, density, clustering float64
		largest                int
	)
	d.stage(StageScore, func() error {
		q = algorithms.Round4(algorithms.Modularity(s, p))
		clustering = algorithms.Round4(algorithms.AverageClusteringCoefficient(s))

		comms := algorithms.Communities(s, p)
		for _, c := range comms {
			largest = max(largest, c.Size)
			density += c.Density
		}
		if len(comms) > 0 {
			density = algorithms.Round4(density / float64(len(comms)))
		}
		return nil
	})

	comms := make(map[K]int, s.Order())
	for id := range s.Order() {
		comms[s.Node(id)] = p.Label(id)
	}

	rec := Record[K]{
		Snapshot:       index,
		Modularity:     q,
		Communities:    comms,
		Phase:          phase,
		Nodes:          s.Order(),
		Edges:          s.Size(),
		NumCommunities: p.NumCells(),

		LargestCommunity: largest,
		MeanDensity:      density,
		AvgClustering:    clustering,
	}

	d.metrics.RecordSnapshot(string(phase), rec.Nodes, rec.NumCommunities, rec.Modularity)

	if s.Order() == 0 {
		d.log.Debug("empty snapshot",
			logging.Snapshot(index),
			logging.Phase(string(phase)))
	}
	d.log.Info("snapshot processed",
		logging.Snapshot(index),
		logging.Phase(string(phase)),
		logging.Nodes(rec.Nodes),
		logging.Edges(rec.Edges),
		logging.Communities(rec.NumCommunities),
		logging.Modularity(rec.Modularity),
		logging.Int("largest_community", rec.LargestCommunity),
		logging.Float64("avg_clustering", rec.AvgClustering),
		logging.Latency(time.Since(start)))

	return rec
}

func (d *Detector[K]) stage(stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	d.metrics.RecordStage(string(stage), time.Since(start))
	return err
}

// Records returns an iterator that folds Step over snaps and yields each
// snapshot's Record in input order. The first error is yielded once and ends
// the sequence. A caller may stop early; records already yielded remain
// valid.
func (d *Detector[K]) Records(snaps iter.Seq[*snapshot.Snapshot[K]]) iter.Seq2[Record[K], error] {
	return func(yield func(Record[K], error) bool) {
		var state State[K] = Initial[K]{}
		processed := 0

		for s := range snaps {
			next, rec, err := d.Step(state, s)
			if err != nil {
				d.metrics.RecordRun(metrics.RunError)
				d.log.Error("run failed", logging.Error(err), logging.Count(processed))
				yield(Record[K]{}, err)
				return
			}
			state = next
			processed++
			if !yield(rec, nil) {
				d.metrics.RecordRun(metrics.RunSuccess)
				return
			}
		}

		if processed == 0 {
			d.metrics.RecordRun(metrics.RunEmpty)
			d.log.Warn("empty snapshot sequence")
			return
		}
		d.metrics.RecordRun(metrics.RunSuccess)
	}
}

// Run processes snaps in order and returns one Record per snapshot. An empty
// sequence yields an empty, non-nil result. On error the records produced
// before the failing snapshot are returned with it.
func (d *Detector[K]) Run(snaps []*snapshot.Snapshot[K]) ([]Record[K], error) {
	return d.RunContext(context.Background(), snaps)
}

// RunContext is Run that stops between snapshots once ctx is done.
func (d *Detector[K]) RunContext(ctx context.Context, snaps []*snapshot.Snapshot[K]) ([]Record[K], error) {
	out := make([]Record[K], 0, len(snaps))
	if err := ctx.Err(); err != nil {
		return out, err
	}
	for rec, err := range d.Records(slices.Values(snaps)) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
		if err := ctx.Err(); err != nil && len(out) < len(snaps) {
			return out, err
		}
	}
	return out, nil
}
