package cli

import (
	"log"
	"math"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/meshprobe/mesh"
	"github.com/sarchlab/meshprobe/mesh/memmesh"
	"github.com/sarchlab/meshprobe/monitoring"
	"github.com/sarchlab/meshprobe/probe"
	"github.com/sarchlab/meshprobe/recording"
)

var runFlags struct {
	configPath  string
	ranks       int
	steps       int
	dim         int
	dbPath      string
	monitorPort int
	noMonitor   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a multi-rank demo simulation with the configured probes",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		// .env can supply defaults, e.g. MESHPROBE_DB.
		_ = godotenv.Load()
		if runFlags.dbPath == "" {
			runFlags.dbPath = os.Getenv("MESHPROBE_DB")
		}

		runDemo()
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.configPath,
		"config", "c", "", "path to the probe configuration file")
	runCmd.Flags().IntVarP(&runFlags.ranks,
		"ranks", "r", 2, "number of ranks in the run")
	runCmd.Flags().IntVarP(&runFlags.steps,
		"steps", "s", 100, "number of time steps to run")
	runCmd.Flags().IntVar(&runFlags.dim,
		"dim", 3, "spatial dimension of the mesh")
	runCmd.Flags().StringVar(&runFlags.dbPath,
		"db", "", "path of the sample database, without extension")
	runCmd.Flags().IntVar(&runFlags.monitorPort,
		"monitor-port", 0, "port of the monitoring server")
	runCmd.Flags().BoolVar(&runFlags.noMonitor,
		"no-monitor", false, "disable the monitoring server")

	must(runCmd.MarkFlagRequired("config"))

	rootCmd.AddCommand(runCmd)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// demoRealm is the minimal simulation driver of the demo run, one per
// rank.
type demoRealm struct {
	meta mesh.Meta
	bulk mesh.Bulk
	time float64
	step int
}

func (r *demoRealm) CurrentTime() float64 {
	return r.time
}

func (r *demoRealm) TimeStepCount() int {
	return r.step
}

func (r *demoRealm) Meta() mesh.Meta {
	return r.meta
}

func (r *demoRealm) Bulk() mesh.Bulk {
	return r.bulk
}

func runDemo() {
	document, err := os.ReadFile(runFlags.configPath)
	if err != nil {
		log.Fatalf("Error reading config: %v", err)
	}

	cfg, err := probe.Load(document, runFlags.ranks)
	if err != nil {
		log.Fatalf("Error loading probes: %v", err)
	}

	engine := memmesh.MakeBuilder().
		WithRanks(runFlags.ranks).
		WithSpatialDimension(runFlags.dim).
		Build()

	recorder := recording.NewSQLiteRecorder(runFlags.dbPath)
	defer recorder.Close()

	var monitor *monitoring.Monitor
	if !runFlags.noMonitor {
		monitor = monitoring.NewMonitor()
		if runFlags.monitorPort > 0 {
			monitor.WithPortNumber(runFlags.monitorPort)
		}
		monitor.StartServer()
	}

	realms := make([]*demoRealm, runFlags.ranks)
	pps := make([]*probe.DataProbePostProcessing, runFlags.ranks)

	// Declare phase on every rank, then finalize the mesh.
	engine.Run(func(rank mesh.Rank, bulk mesh.Bulk) {
		realms[rank] = &demoRealm{meta: engine.Meta(), bulk: bulk}

		builder := probe.MakeBuilder().
			WithRealm(realms[rank]).
			WithGroupSpecs(cloneGroups(cfg, rank)).
			WithOutputFrequency(cfg.OutputFrequency).
			WithRecorder(recorder)
		if monitor != nil {
			builder = builder.WithMeansSink(monitor)
		}
		pps[rank] = builder.Build()

		if err := pps[rank].Setup(); err != nil {
			log.Fatalf("Error in probe setup: %v", err)
		}
	})

	engine.Commit()

	// Create phase: collective id generation and entity declaration.
	engine.Run(func(rank mesh.Rank, bulk mesh.Bulk) {
		if err := pps[rank].Initialize(); err != nil {
			log.Fatalf("Error in probe initialization: %v", err)
		}
	})

	if monitor != nil {
		for _, pp := range pps {
			monitor.RegisterPostProcessor(pp)
		}
	}

	// Time stepping. Sampling is local to each rank, so ranks take their
	// steps in turn here.
	const dt = 0.01
	for step := 0; step <= runFlags.steps; step++ {
		for rank := range pps {
			realms[rank].step = step
			realms[rank].time = float64(step) * dt

			fillSyntheticFields(pps[rank], realms[rank])
			pps[rank].Execute()
		}
	}
}

// cloneGroups gives each rank its own spec instances, the way each process
// of a real run parses the configuration independently.
func cloneGroups(cfg *probe.Config, _ mesh.Rank) []*probe.GroupSpec {
	groups := make([]*probe.GroupSpec, len(cfg.Groups))

	for i, g := range cfg.Groups {
		clone := &probe.GroupSpec{
			Name:        g.Name,
			FromTargets: g.FromTargets,
			Fields:      g.Fields,
		}

		for _, set := range g.Sets {
			clone.Sets = append(clone.Sets, &probe.ProbeSet{
				PartNames:   set.PartNames,
				OwningRanks: set.OwningRanks,
				NumPoints:   set.NumPoints,
				Tips:        set.Tips,
				Tails:       set.Tails,
			})
		}

		groups[i] = clone
	}

	return groups
}

// fillSyntheticFields writes a smooth analytic signal into every requested
// probe field, so the demo has something to average.
func fillSyntheticFields(
	pp *probe.DataProbePostProcessing,
	realm *demoRealm,
) {
	meta := realm.Meta()
	bulk := realm.Bulk()

	coordinates := meta.GetField(probe.CoordinatesFieldName, mesh.NodeRank)

	for _, group := range pp.Groups() {
		for _, req := range group.Fields {
			f := meta.GetField(req.Name, mesh.NodeRank)
			if f == nil {
				continue
			}

			for _, set := range group.Sets {
				for i := 0; i < set.NumProbes(); i++ {
					for _, node := range set.Nodes(i) {
						coords := bulk.FieldData(coordinates, node)
						data := bulk.FieldData(f, node)

						for c := range data {
							phase := float64(c+1) * coords[0]
							data[c] = math.Sin(realm.time+phase) +
								coords[len(coords)-1]
						}
					}
				}
			}
		}
	}
}
