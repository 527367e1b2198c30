package probe

import (
	"log"
	"os"
)

// Builder can be used to build a DataProbePostProcessing.
type Builder struct {
	realm      Realm
	groups     []*GroupSpec
	outputFreq int
	logger     *log.Logger
	recorder   SampleRecorder
	sink       MeansSink
}

// MakeBuilder creates a builder with the default output frequency.
func MakeBuilder() Builder {
	return Builder{
		outputFreq: DefaultOutputFrequency,
	}
}

// WithRealm sets the owning simulation driver.
func (b Builder) WithRealm(r Realm) Builder {
	b.realm = r
	return b
}

// WithGroupSpecs sets the loaded probe groups.
func (b Builder) WithGroupSpecs(groups []*GroupSpec) Builder {
	b.groups = groups
	return b
}

// WithOutputFrequency sets the sampling period in time steps.
func (b Builder) WithOutputFrequency(n int) Builder {
	b.outputFreq = n
	return b
}

// WithLogger sets the logger that sample means are reported to.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithRecorder sets a recorder that persists sample means.
func (b Builder) WithRecorder(r SampleRecorder) Builder {
	b.recorder = r
	return b
}

// WithMeansSink sets a sink that receives each sampling step's means.
func (b Builder) WithMeansSink(s MeansSink) Builder {
	b.sink = s
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.realm == nil {
		panic("a realm must be set before building")
	}

	if b.outputFreq < 1 {
		log.Panicf("output frequency must be positive, got %d", b.outputFreq)
	}
}

// Build builds the post-processor.
func (b Builder) Build() *DataProbePostProcessing {
	b.parametersMustBeValid()

	logger := b.logger
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}

	return &DataProbePostProcessing{
		realm:         b.realm,
		groups:        b.groups,
		outputFreq:    b.outputFreq,
		logger:        logger,
		recorder:      b.recorder,
		sink:          b.sink,
		state:         stateLoaded,
		missingFields: make(map[string]bool),
	}
}
