package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/KaramelBytes/datamatic/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSampleValues bounds ColumnProfile.SampleValues.
const DefaultSampleValues = 10

// ColumnProfile describes one column of a dataset.
type ColumnProfile struct {
	Name         string     `json:"name" yaml:"name"`
	Type         ColumnType `json:"type" yaml:"type"`
	Stats        Stats      `json:"stats" yaml:"stats"`
	UniqueValues []string   `json:"unique_values" yaml:"unique_values"`
	SampleValues []string   `json:"sample_values" yaml:"sample_values"`
	Missing      int        `json:"missing" yaml:"missing"`
}

// DatasetProfile is the complete, immutable result of profiling one dataset.
// Callers must treat it as read-only; it is safe for concurrent readers.
type DatasetProfile struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	RowCount    int               `json:"row_count" yaml:"row_count"`
	Columns     []ColumnProfile   `json:"columns" yaml:"columns"`
	Correlation CorrelationMatrix `json:"correlation" yaml:"correlation"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
}

// Column returns the profile of name.
func (p *DatasetProfile) Column(name string) (ColumnProfile, bool) {
	if p == nil {
		return ColumnProfile{}, false
	}
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Types returns the inferred type of every column.
func (p *DatasetProfile) Types() map[string]ColumnType {
	out := make(map[string]ColumnType)
	if p == nil {
		return out
	}
	for _, c := range p.Columns {
		out[c.Name] = c.Type
	}
	return out
}

// NumericColumns lists numeric columns in dataset order.
func (p *DatasetProfile) NumericColumns() []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, c := range p.Columns {
		if c.Type.IsNumeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// Empty reports whether there is nothing to show.
func (p *DatasetProfile) Empty() bool { return p == nil || len(p.Columns) == 0 }

// Option configures a Profiler.
type Option func(*Profiler)

// WithSampleSize sets the number of rows inspected by type inference.
func WithSampleSize(n int) Option { return func(p *Profiler) { p.sampleSize = n } }

// WithSampleValues bounds the per-column sample values kept in the profile.
func WithSampleValues(n int) Option { return func(p *Profiler) { p.sampleValues = n } }

// WithOutlierThreshold sets the robust |z| threshold; 0 disables outlier counts.
func WithOutlierThreshold(thr float64) Option { return func(p *Profiler) { p.outlierThr = thr } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Profiler) {
		if l != nil {
			p.log = l
		}
	}
}

// WithInstruments sets metric instruments.
func WithInstruments(i *telemetry.Instruments) Option { return func(p *Profiler) { p.metrics = i } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(p *Profiler) { p.now = now } }

// WithIDGenerator overrides the profile id source.
func WithIDGenerator(gen func() string) Option { return func(p *Profiler) { p.newID = gen } }

// Profiler runs type inference, statistics and correlation over a dataset.
// A Profiler holds no per-dataset state and may be reused.
type Profiler struct {
	sampleSize   int
	sampleValues int
	outlierThr   float64
	log          *zap.Logger
	metrics      *telemetry.Instruments
	now          func() time.Time
	newID        func() string
}

// NewProfiler returns a Profiler with defaults overridden by opts.
func NewProfiler(opts ...Option) *Profiler {
	p := &Profiler{
		sampleSize:   DefaultSampleSize,
		sampleValues: DefaultSampleValues,
		outlierThr:   DefaultOutlierThreshold,
		log:          zap.NewNop(),
		metrics:      telemetry.NoopInstruments(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	if p.sampleSize < 1 {
		p.sampleSize = DefaultSampleSize
	}
	if p.sampleValues < 0 {
		p.sampleValues = DefaultSampleValues
	}
	return p
}

// Build profiles ds synchronously. ctx is checked between stages; a cancelled
// build returns ctx.Err() and no profile. An empty dataset yields an empty profile.
func (p *Profiler) Build(ctx context.Context, ds *Dataset) (*DatasetProfile, error) {
	start := p.now()
	prof := &DatasetProfile{
		ID:          p.newID(),
		RowCount:    ds.Len(),
		Columns:     []ColumnProfile{},
		Correlation: CorrelationMatrix{Columns: []string{}, Values: [][]float64{}},
		CreatedAt:   start,
	}
	if ds != nil {
		prof.Name = ds.Name
	}
	if ds.Len() == 0 {
		p.log.Debug("empty dataset, nothing to profile", zap.String("dataset", prof.Name))
		return prof, nil
	}

	types := Infer(ds, p.sampleSize)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", prof.Name, err)
	}
	p.log.Debug("types inferred", zap.Int("columns", len(types)), zap.Int("sample_size", p.sampleSize))

	var numeric []string
	for _, col := range ds.Columns {
		t := types[col]
		cp := ColumnProfile{Name: col, Type: t, Stats: summarize(ds, col, t, p.outlierThr)}
		cp.UniqueValues, cp.SampleValues, cp.Missing = p.values(ds, col)
		if ns := cp.Stats.Numeric; ns != nil {
			if ns.Dropped > 0 {
				p.log.Warn("unparseable numeric values dropped",
					zap.String("column", col), zap.Int("dropped", ns.Dropped))
				p.metrics.AddDropped(ctx, col, ns.Dropped)
			}
			numeric = append(numeric, col)
		}
		prof.Columns = append(prof.Columns, cp)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", prof.Name, err)
		}
	}

	prof.Correlation = Correlate(ds, numeric)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", prof.Name, err)
	}

	elapsed := p.now().Sub(start)
	p.metrics.RecordProfile(ctx, float64(elapsed.Microseconds())/1000, len(prof.Columns))
	p.log.Debug("profile built",
		zap.String("dataset", prof.Name),
		zap.Int("rows", prof.RowCount),
		zap.Int("columns", len(prof.Columns)),
		zap.Int("numeric", len(numeric)),
		zap.Duration("elapsed", elapsed))
	return prof, nil
}

// values collects the sorted set of normalized values, the first sample values
// in row order and the count of empty entries.
func (p *Profiler) values(ds *Dataset, col string) (unique, sample []string, missing int) {
	seen := map[string]struct{}{}
	sample = []string{}
	for i := 0; i < ds.Len(); i++ {
		s := Normalize(ds.Value(i, col))
		if s == "" {
			missing++
			continue
		}
		if len(sample) < p.sampleValues {
			sample = append(sample, s)
		}
		seen[s] = struct{}{}
	}
	unique = make([]string, 0, len(seen))
	for s := range seen {
		unique = append(unique, s)
	}
	sort.Strings(unique)
	return unique, sample, missing
}

// Job is a profile being built in the background.
type Job struct {
	done chan struct{}
	prof *DatasetProfile
	err  error
}

// Start builds the profile of ds on a new goroutine. The result becomes visible
// all at once when the job completes.
func (p *Profiler) Start(ctx context.Context, ds *Dataset) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		prof, err := p.Build(ctx, ds)
		j.prof, j.err = prof, err
		close(j.done)
	}()
	return j
}

// Done is closed once the result is available.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) (*DatasetProfile, error) {
	select {
	case <-j.done:
		return j.prof, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
