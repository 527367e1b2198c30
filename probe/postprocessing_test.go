package probe

import (
	"bytes"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/meshprobe/mesh"
	"github.com/sarchlab/meshprobe/mesh/memmesh"
	"github.com/sarchlab/meshprobe/recording"
)

type testRealm struct {
	meta mesh.Meta
	bulk mesh.Bulk
	time float64
	step int
}

func (r *testRealm) CurrentTime() float64 {
	return r.time
}

func (r *testRealm) TimeStepCount() int {
	return r.step
}

func (r *testRealm) Meta() mesh.Meta {
	return r.meta
}

func (r *testRealm) Bulk() mesh.Bulk {
	return r.bulk
}

type captureSink struct {
	batches [][]recording.Sample
}

func (s *captureSink) PublishMeans(samples []recording.Sample) {
	s.batches = append(s.batches, samples)
}

const testConfig = `
data_probes:
  output_frequency: 10
  specifications:
    - name: wake_probes
      from_target_part: block_1
      line_of_site_specifications:
        - name: los_a
          number_of_points: 3
          tip_coordinates: [0.0, 0.0, 1.0]
          tail_coordinates: [0.0, 0.0, 0.0]
        - name: los_b
          number_of_points: 2
          tip_coordinates: [1.0, 0.0, 0.0]
          tail_coordinates: [0.0, 0.0, 0.0]
      output_variables:
        - field_name: velocity
          field_size: 3
        - field_name: pressure
          field_size: 1
`

var _ = Describe("DataProbePostProcessing", func() {
	var (
		engine *memmesh.Engine
		realm  *testRealm
		logBuf *bytes.Buffer
		sink   *captureSink
		dp     *DataProbePostProcessing
	)

	BeforeEach(func() {
		engine = memmesh.MakeBuilder().Build()

		cfg, err := Load([]byte(testConfig), 1)
		Expect(err).ToNot(HaveOccurred())

		realm = &testRealm{meta: engine.Meta(), bulk: engine.Bulk(0)}
		logBuf = &bytes.Buffer{}
		sink = &captureSink{}

		dp = MakeBuilder().
			WithRealm(realm).
			WithGroupSpecs(cfg.Groups).
			WithOutputFrequency(cfg.OutputFrequency).
			WithLogger(log.New(logBuf, "", 0)).
			WithMeansSink(sink).
			Build()
	})

	provision := func() {
		Expect(dp.Setup()).To(Succeed())
		engine.Commit()
		Expect(dp.Initialize()).To(Succeed())
	}

	It("should declare one io part per probe", func() {
		Expect(dp.Setup()).To(Succeed())

		set := dp.Groups()[0].Sets[0]
		Expect(set.Part(0)).ToNot(BeNil())
		Expect(set.Part(0).Name()).To(Equal("los_a"))
		Expect(set.Part(0).IsIOPart()).To(BeTrue())
		Expect(set.Part(1).Name()).To(Equal("los_b"))
	})

	It("should register coordinates and output fields on each part", func() {
		Expect(dp.Setup()).To(Succeed())

		set := dp.Groups()[0].Sets[0]

		coordinates := engine.Meta().GetField(
			CoordinatesFieldName, mesh.NodeRank)
		Expect(coordinates).ToNot(BeNil())
		Expect(coordinates.ComponentsOnPart(set.Part(0))).To(Equal(3))

		velocity := engine.Meta().GetField("velocity_probe", mesh.NodeRank)
		Expect(velocity).ToNot(BeNil())
		Expect(velocity.ComponentsOnPart(set.Part(0))).To(Equal(3))
		Expect(velocity.ComponentsOnPart(set.Part(1))).To(Equal(3))

		pressure := engine.Meta().GetField("pressure_probe", mesh.NodeRank)
		Expect(pressure.ComponentsOnPart(set.Part(0))).To(Equal(1))
	})

	It("should reject probes whose geometry does not match the mesh", func() {
		engine2D := memmesh.MakeBuilder().WithSpatialDimension(2).Build()
		realm.meta = engine2D.Meta()
		realm.bulk = engine2D.Bulk(0)

		Expect(dp.Setup()).ToNot(Succeed())
	})

	It("should panic when Setup runs twice", func() {
		Expect(dp.Setup()).To(Succeed())

		Expect(func() { _ = dp.Setup() }).To(Panic())
	})

	It("should panic when Initialize runs before Setup", func() {
		Expect(func() { _ = dp.Initialize() }).To(Panic())
	})

	It("should panic when Execute runs before Initialize", func() {
		Expect(dp.Setup()).To(Succeed())

		Expect(func() { dp.Execute() }).To(Panic())
	})

	It("should create the requested number of nodes per probe", func() {
		provision()

		set := dp.Groups()[0].Sets[0]
		Expect(set.Nodes(0)).To(HaveLen(3))
		Expect(set.Nodes(1)).To(HaveLen(2))
	})

	It("should position nodes evenly from tail to tip", func() {
		provision()

		set := dp.Groups()[0].Sets[0]
		coordinates := engine.Meta().GetField(
			CoordinatesFieldName, mesh.NodeRank)

		nodes := set.Nodes(0)
		bulk := engine.Bulk(0)
		Expect(bulk.FieldData(coordinates, nodes[0])).
			To(Equal([]float64{0, 0, 0}))
		Expect(bulk.FieldData(coordinates, nodes[1])).
			To(Equal([]float64{0, 0, 0.5}))
		Expect(bulk.FieldData(coordinates, nodes[2])).
			To(Equal([]float64{0, 0, 1}))
	})

	It("should build the inactive selector over all probe parts", func() {
		provision()

		set := dp.Groups()[0].Sets[0]
		selector := dp.InactiveSelector()
		Expect(selector.Contains(set.Part(0))).To(BeTrue())
		Expect(selector.Contains(set.Part(1))).To(BeTrue())
		Expect(selector.Parts()).To(HaveLen(2))
	})

	It("should report the mean of each field component", func() {
		provision()

		set := dp.Groups()[0].Sets[0]
		bulk := engine.Bulk(0)
		pressure := engine.Meta().GetField("pressure_probe", mesh.NodeRank)

		for i, node := range set.Nodes(0) {
			bulk.FieldData(pressure, node)[0] = float64(i + 1)
		}

		realm.step = 10
		realm.time = 0.1
		dp.Execute()

		Expect(logBuf.String()).To(
			ContainSubstring("mean value for pressure_probe[0] is: 2"))
	})

	It("should publish sample batches to the means sink", func() {
		provision()

		realm.step = 10
		dp.Execute()

		Expect(sink.batches).To(HaveLen(1))

		// 2 probes, velocity (3 comps) + pressure (1 comp) each.
		Expect(sink.batches[0]).To(HaveLen(8))
		Expect(sink.batches[0][0].GroupName).To(Equal("wake_probes"))
		Expect(sink.batches[0][0].Step).To(Equal(10))
	})

	It("should sample on output steps only", func() {
		provision()

		for step := 0; step <= 25; step++ {
			realm.step = step
			dp.Execute()
		}

		Expect(strings.Count(logBuf.String(), "probe averages")).To(Equal(3))
	})

	It("should not touch the mesh on idle steps", func() {
		ctrl := gomock.NewController(GinkgoT())
		defer ctrl.Finish()

		mockRealm := NewMockRealm(ctrl)
		idle := MakeBuilder().WithRealm(mockRealm).Build()
		idle.state = stateProvisioned

		mockRealm.EXPECT().CurrentTime().Return(0.3)
		mockRealm.EXPECT().TimeStepCount().Return(3)

		idle.Execute()
	})

	It("should report a missing field once and skip it", func() {
		provision()

		group := dp.Groups()[0]
		group.Fields = append(group.Fields,
			FieldRequest{Name: "temperature_probe", Components: 1})

		realm.step = 10
		dp.Execute()
		realm.step = 20
		dp.Execute()

		Expect(strings.Count(logBuf.String(),
			"field temperature_probe is not registered")).To(Equal(1))
	})
})
