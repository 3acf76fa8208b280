package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/aideck/cli/cmd/utils"
)

// Readiness is the onboarding gate's progression state.
type Readiness int

const (
	// ReadinessUnknown is the initial state, before the first probe resolves.
	ReadinessUnknown Readiness = iota
	// ReadinessNotReady means probes resolved and at least one dependency is down.
	ReadinessNotReady
	// ReadinessReady means both gating dependencies are up.
	ReadinessReady
)

func (r Readiness) String() string {
	switch r {
	case ReadinessNotReady:
		return "not ready"
	case ReadinessReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ReadinessProbes supplies the boolean dependency checks and the
// informational memory probe. Each probe is independent; a probe returning
// an error counts as "not running" rather than failing the gate.
type ReadinessProbes struct {
	DockerRunning func(ctx context.Context) bool
	ServerRunning func(ctx context.Context) bool
	MemoryLimit   func(ctx context.Context) (*float64, error)
}

// ReadinessGate combines the docker and daemon probes into a single
// forward-progression decision. Memory is displayed alongside but never
// gates. Rechecks may overlap; the gate applies results
// last-resolved-wins via a generation counter.
type ReadinessGate struct {
	probes ReadinessProbes

	mu            sync.Mutex
	gen           uint64 // increments per Recheck
	appliedGen    uint64 // generation of the last applied result
	state         Readiness
	dockerRunning bool
	serverRunning bool

	memGen     uint64
	memApplied uint64
	memLoading bool
	memLimit   *float64
}

// NewReadinessGate builds a gate in the Unknown state.
func NewReadinessGate(probes ReadinessProbes) *ReadinessGate {
	return &ReadinessGate{probes: probes, state: ReadinessUnknown}
}

// Recheck runs both gating probes and applies the result. Idempotent and
// safe to call while another Recheck is in flight: a stale probe result
// never overwrites a newer one.
func (g *ReadinessGate) Recheck(ctx context.Context) {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	docker := g.probes.DockerRunning != nil && g.probes.DockerRunning(ctx)
	server := g.probes.ServerRunning != nil && g.probes.ServerRunning(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen < g.appliedGen {
		return // a newer recheck already resolved
	}
	g.appliedGen = gen
	g.dockerRunning = docker
	g.serverRunning = server
	if docker && server {
		g.state = ReadinessReady
	} else {
		g.state = ReadinessNotReady
	}
}

// RefreshMemory runs the informational memory probe. Its loading flag is
// independent of the gating booleans and never blocks them.
func (g *ReadinessGate) RefreshMemory(ctx context.Context) {
	g.mu.Lock()
	g.memGen++
	gen := g.memGen
	g.memLoading = true
	g.mu.Unlock()

	var limit *float64
	if g.probes.MemoryLimit != nil {
		if v, err := g.probes.MemoryLimit(ctx); err == nil {
			limit = v
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen < g.memApplied {
		return
	}
	g.memApplied = gen
	g.memLimit = limit
	g.memLoading = false
}

// Readiness returns the current progression state.
func (g *ReadinessGate) Readiness() Readiness {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CanProceed reports whether the onboarding "Next" control is enabled:
// true iff both docker and the daemon are running.
func (g *ReadinessGate) CanProceed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dockerRunning && g.serverRunning
}

// DockerRunning reports the last resolved docker probe result.
func (g *ReadinessGate) DockerRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dockerRunning
}

// ServerRunning reports the last resolved daemon probe result.
func (g *ReadinessGate) ServerRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.serverRunning
}

// MemoryLoading reports whether the memory probe is still resolving.
func (g *ReadinessGate) MemoryLoading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.memLoading
}

// MemoryDisplay renders the probed memory limit: "8GiB" style, or ""
// while the value is unresolved.
func (g *ReadinessGate) MemoryDisplay() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return FormatMemoryLimit(g.memLimit)
}

// FormatMemoryLimit renders a GiB figure for display. nil yields the blank
// string, not an error: unresolved memory is a valid transient state.
func FormatMemoryLimit(limit *float64) string {
	if limit == nil {
		return ""
	}
	return strconv.FormatFloat(*limit, 'f', -1, 64) + "GiB"
}

// defaultProbes wires the gate to the real docker engine and daemon.
func defaultProbes(client *DaemonClient) ReadinessProbes {
	return ReadinessProbes{
		DockerRunning: func(ctx context.Context) bool {
			return isDockerRunning(ctx)
		},
		ServerRunning: func(ctx context.Context) bool {
			return client.Healthy(ctx)
		},
		MemoryLimit: func(ctx context.Context) (*float64, error) {
			// Prefer the daemon's stats probe; fall back to asking the
			// docker engine directly when the daemon is down.
			if stats, err := client.Stats(ctx); err == nil && stats.MemoryLimit != nil {
				return stats.MemoryLimit, nil
			}
			return engineMemoryGiB(ctx)
		},
	}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check local prerequisites for running services",
	Long: `Verify that the local system is ready to run Aideck services.

Checks, in order:
  - Docker engine reachable (required)
  - Aideck daemon reachable (required)
  - Memory available to the container runtime (informational)

The command exits non-zero when a required dependency is down.`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	gate := NewReadinessGate(defaultProbes(newDaemonClient()))
	gate.Recheck(ctx)
	gate.RefreshMemory(ctx)

	fmt.Println()
	fmt.Println("Aideck Doctor")
	fmt.Println("=============")
	fmt.Println()
	printCheckRow("Docker engine", gate.DockerRunning())
	printCheckRow("Aideck daemon", gate.ServerRunning())

	if mem := gate.MemoryDisplay(); mem != "" {
		fmt.Printf("  ℹ️  Memory available: %s\n", mem)
	} else {
		fmt.Printf("  ℹ️  Memory available: (unknown)\n")
	}
	if daemon := effectiveDaemonURL(); !utils.IsLocalhost(daemon) {
		fmt.Printf("  ℹ️  Daemon URL %s is not local; container probes reflect this machine only\n", daemon)
	}
	fmt.Println()

	if !gate.CanProceed() {
		OutputError("System is not ready. Fix the failing checks above and re-run 'aideck doctor'.\n")
		os.Exit(1)
	}
	OutputSuccess("All required checks passed.\n")
}

func printCheckRow(name string, ok bool) {
	if ok {
		fmt.Printf("  ✓ %s\n", name)
	} else {
		fmt.Printf("  ✗ %s\n", name)
	}
}
