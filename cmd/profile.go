package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// profileFiles returns the CPU and heap profile paths for the configured prefix.
func profileFiles() (cpuPath, memPath string) {
	return profile.Prefix + ".cpu.prof", profile.Prefix + ".mem.prof"
}

// startProfiling begins CPU profiling when --profile is set.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuPath, memPath := profileFiles()
	out, err := os.Create(cpuPath)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", cpuPath, err)
	}
	if err := pprof.StartCPUProfile(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("cannot start CPU profile: %w", err)
	}

	// stderr keeps JSON, CSV and MCP output on stdout intact
	fmt.Fprintf(os.Stderr, "Profiling to %s and %s\n", cpuPath, memPath)
	return nil
}

// StopProfiling flushes the CPU profile and writes a heap snapshot.
func StopProfiling() error {
	if !profile.Enabled {
		return nil
	}
	pprof.StopCPUProfile()

	cpuPath, memPath := profileFiles()
	out, err := os.Create(memPath)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", memPath, err)
	}
	defer func() { _ = out.Close() }()

	if err := pprof.WriteHeapProfile(out); err != nil {
		return fmt.Errorf("cannot write heap profile: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Inspect with: go tool pprof %s\n", cpuPath)
	return nil
}
