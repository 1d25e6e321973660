// Package monitoring turns a running simulation into an HTTP server that
// exposes the metrics of registered MMUs, the resource usage of the process,
// and CPU profiles.
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
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

// Monitor can turn a simulation into a server and allows external monitoring
// of the MMUs registered with it.
type Monitor struct {
	portNumber int
	mmus       []*mmu.Comp
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
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

// RegisterMMU registers an MMU to be monitored.
func (m *Monitor) RegisterMMU(c *mmu.Comp) {
	m.mmus = append(m.mmus, c)
}

// StartServer starts the monitoring server in the background and logs its
// URL to stderr.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_mmus", m.listMMUs)
	r.HandleFunc("/api/mmu/{name}", m.mmuMetrics)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring simulation with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) listMMUs(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	for _, c := range m.mmus {
		names = append(names, c.Name())
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type mmuMetricsRsp struct {
	Name                  string `json:"name"`
	TLBHitRate            int    `json:"tlb_hit_rate"`
	TLBHits               uint64 `json:"tlb_hits"`
	TLBMisses             uint64 `json:"tlb_misses"`
	InternalFragmentation uint64 `json:"internal_fragmentation"`
	PageTableEntries      int    `json:"page_table_entries"`
	FramesAllocated       uint64 `json:"frames_allocated"`
	FramesTotal           uint64 `json:"frames_total"`
}

func (m *Monitor) mmuMetrics(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	c := m.findMMUOr404(w, name)
	if c == nil {
		return
	}

	rsp := mmuMetricsRsp{
		Name:                  c.Name(),
		TLBHitRate:            c.TLBHitRate(),
		TLBHits:               c.TLBHits(),
		TLBMisses:             c.TLBMisses(),
		InternalFragmentation: c.InternalFragmentation(),
		PageTableEntries:      c.PageTableEntryCount(),
		FramesAllocated:       c.NumFramesAllocated(),
		FramesTotal:           c.NumFrames(),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) findMMUOr404(
	w http.ResponseWriter,
	name string,
) *mmu.Comp {
	for _, c := range m.mmus {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
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

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
