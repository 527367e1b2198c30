// Package monitoring turns a probe run into a small web server so the
// latest probe means and the process state can be inspected while the
// simulation is running.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/meshprobe/probe"
	"github.com/sarchlab/meshprobe/recording"
)

// Monitor serves probe state over HTTP. It doubles as a probe.MeansSink:
// wire it into the post-processor builder and every sampling step's means
// become visible under /api/means.
type Monitor struct {
	portNumber int

	mu         sync.Mutex
	processors []*probe.DataProbePostProcessing
	latest     map[string][]recording.Sample
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		latest: make(map[string][]recording.Sample),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterPostProcessor registers a post-processor to be monitored.
func (m *Monitor) RegisterPostProcessor(dp *probe.DataProbePostProcessing) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processors = append(m.processors, dp)
}

// PublishMeans records the means of one sampling step as the latest
// snapshot of their groups.
func (m *Monitor) PublishMeans(samples []recording.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byGroup := make(map[string][]recording.Sample)
	for _, s := range samples {
		byGroup[s.GroupName] = append(byGroup[s.GroupName], s)
	}

	for group, groupSamples := range byGroup {
		m.latest[group] = groupSamples
	}
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/groups", m.listGroups)
	r.HandleFunc("/api/group/{name}", m.listGroupDetails)
	r.HandleFunc("/api/means/{name}", m.listMeans)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring probes with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

func (m *Monitor) listGroups(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := []string{}
	for _, dp := range m.processors {
		for _, g := range dp.Groups() {
			names = append(names, g.Name)
		}
	}

	rsp, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

func (m *Monitor) listGroupDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	group := m.findGroupOr404(w, name)
	if group == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(group)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) listMeans(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m.mu.Lock()
	samples, ok := m.latest[name]
	m.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No samples for group"))
		dieOnErr(err)
		return
	}

	rsp, err := json.Marshal(samples)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

func (m *Monitor) findGroupOr404(
	w http.ResponseWriter,
	name string,
) *probe.GroupSpec {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, dp := range m.processors {
		for _, g := range dp.Groups() {
			if g.Name == name {
				return g
			}
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Group not found"))
	dieOnErr(err)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	data, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(data)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	data, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
