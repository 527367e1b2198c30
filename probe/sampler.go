package probe

import (
	"github.com/sarchlab/meshprobe/mesh"
	"github.com/sarchlab/meshprobe/recording"
)

// A SampleRecorder persists samples. recording.SampleRecorder satisfies
// this.
type SampleRecorder interface {
	Record(s recording.Sample)
}

// A MeansSink receives the full batch of means produced at one sampling
// step, e.g. for live monitoring.
type MeansSink interface {
	PublishMeans(samples []recording.Sample)
}

// provideAverage computes and reports, for every owned probe and every
// requested field, the arithmetic mean of each field component over the
// probe's nodes. No cross-rank reduction happens; each rank reports only
// the probes it owns.
func (dp *DataProbePostProcessing) provideAverage(
	currentTime float64,
	stepCount int,
) {
	meta := dp.realm.Meta()
	bulk := dp.realm.Bulk()

	dp.logger.Printf("probe averages at time/step: %g/%d",
		currentTime, stepCount)

	var batch []recording.Sample

	for _, group := range dp.groups {
		dp.logger.Printf(" specification name: %s", group.Name)

		for _, set := range group.Sets {
			for i := 0; i < set.NumProbes(); i++ {
				nodes := set.nodes[i]
				if len(nodes) == 0 {
					continue
				}

				dp.logger.Printf("  probe name: %s", set.PartNames[i])

				for _, req := range group.Fields {
					means := dp.probeFieldMeans(meta, bulk, nodes, req)
					if means == nil {
						continue
					}

					for c, mean := range means {
						dp.logger.Printf("   mean value for %s[%d] is: %g",
							req.Name, c, mean)

						batch = append(batch, recording.Sample{
							GroupName: group.Name,
							Probe:     set.PartNames[i],
							Field:     req.Name,
							Component: c,
							Step:      stepCount,
							Time:      currentTime,
							Mean:      mean,
						})
					}
				}
			}
		}
	}

	if dp.recorder != nil {
		for _, s := range batch {
			dp.recorder.Record(s)
		}
	}

	if dp.sink != nil {
		dp.sink.PublishMeans(batch)
	}
}

// probeFieldMeans averages one field over the probe's nodes. A field that
// was never registered is reported once and skipped afterwards.
func (dp *DataProbePostProcessing) probeFieldMeans(
	meta mesh.Meta,
	bulk mesh.Bulk,
	nodes []mesh.Entity,
	req FieldRequest,
) []float64 {
	theField := meta.GetField(req.Name, mesh.NodeRank)
	if theField == nil {
		if !dp.missingFields[req.Name] {
			dp.missingFields[req.Name] = true
			dp.logger.Printf("   field %s is not registered; skipping",
				req.Name)
		}
		return nil
	}

	means := make([]float64, req.Components)

	for _, node := range nodes {
		data := bulk.FieldData(theField, node)
		for c := range means {
			means[c] += data[c]
		}
	}

	for c := range means {
		means[c] /= float64(len(nodes))
	}

	return means
}
