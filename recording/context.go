package recording

// Result is a per-feature result table stored on the Context. Concrete
// types are defined by the feature implementations; dependent features
// look results up by name and assert the concrete type they need.
type Result interface {
	// FeatureName returns the registry name of the feature that
	// produced the table.
	FeatureName() string

	// Len returns the number of per-intensity rows.
	Len() int
}

// Context aggregates everything associated with one recording for the
// duration of a pipeline run: the raw sweep table, the sweep-averaged
// table, the sampling rate, free-form metadata, and per-feature results.
//
// A Context is owned by exactly one pipeline run at a time; stages
// mutate it in a fixed sequence and never share it across recordings.
type Context struct {
	Sweeps     SweepTable
	Averaged   AveragedTable
	SampleRate float64 // Hz
	Meta       map[string]string

	results map[string]Result
}

// NewContext creates a Context for the given sweeps and sampling rate.
func NewContext(sweeps SweepTable, sampleRate float64) *Context {
	return &Context{
		Sweeps:     sweeps,
		SampleRate: sampleRate,
		Meta:       make(map[string]string),
		results:    make(map[string]Result),
	}
}

// AddResult stores (or replaces) a feature result under its name.
func (c *Context) AddResult(r Result) {
	if c.results == nil {
		c.results = make(map[string]Result)
	}

	c.results[r.FeatureName()] = r
}

// Result returns the stored result for the given feature name, or nil.
func (c *Context) Result(name string) Result {
	return c.results[name]
}

// Results returns the name-keyed result mapping. Callers must treat the
// returned map as read-only.
func (c *Context) Results() map[string]Result {
	return c.results
}
