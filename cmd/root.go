package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ExpHP/kmc-dichalcogen/kmc"
	"github.com/ExpHP/kmc-dichalcogen/kmc/lattice"
	"github.com/ExpHP/kmc-dichalcogen/kmc/physics"
	"github.com/ExpHP/kmc-dichalcogen/kmc/trace"
)

var (
	// CLI flags for the engine
	seed          uint64  // Seed for the run's pseudo-random source
	maxSteps      int     // Stop after this many applied events (0 = unbounded)
	maxTime       float64 // Stop once simulated time reaches this value (0 = unbounded)
	validateEvery int     // Full rebuild-and-compare every N steps (0 = off)
	noIncremental bool    // Force full catalog rebuild before every sample
	logLevel      string  // Log verbosity level

	// CLI flags for the physical model and output
	dimensions  string // PBC grid dimensions as "ARM,ZAG" unit cells
	physicsPath string // Physics YAML config (rates/barriers, initial state)
	outputPath  string // Trace output file ("" = stdout)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "kmc-dichalcogen",
	Short: "Kinetic Monte Carlo simulator for point defects in dichalcogenide lattices",
}

// runCmd executes a simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a defect-evolution simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if err := runSimulation(); err != nil {
			logrus.Errorf("run failed: %v", err)
			os.Exit(1)
		}
	},
}

func runSimulation() error {
	dimA, dimB, err := parseDimensions(dimensions)
	if err != nil {
		return err
	}
	grid, err := lattice.NewGrid(dimA, dimB)
	if err != nil {
		return err
	}

	physCfg := physics.DefaultConfig()
	if physicsPath != "" {
		physCfg, err = physics.LoadConfig(physicsPath)
		if err != nil {
			return err
		}
	}
	rates, err := physCfg.KindRates()
	if err != nil {
		return err
	}

	key := kmc.NewSimulationKey(seed)
	model := physics.New(grid, rates)
	if frac := physCfg.Initial.DivacancyFraction; frac > 0 {
		if err := model.SeedRandom(frac, key.NewRand(kmc.SubsystemInitialState)); err != nil {
			return err
		}
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating trace output: %w", err)
		}
		defer f.Close()
		out = f
	}
	tw, err := trace.NewWriter(out, trace.GridInfo{
		LatticeType: "hexagonal",
		CoordFormat: "axial",
		Dim:         [2]int{dimA, dimB},
	})
	if err != nil {
		return err
	}

	cfg := kmc.Config{
		Seed:          seed,
		MaxSteps:      maxSteps,
		MaxTime:       maxTime,
		ValidateEvery: validateEvery,
		Incremental:   !noIncremental,
	}
	if maxSteps == 0 && maxTime == 0 {
		logrus.Warnf("No step or time bound set; the run ends only when no enabled events remain")
	}
	logrus.Infof("Starting simulation: %dx%d grid, seed=%d, max_steps=%d, max_time=%g, validate_every=%d, incremental=%v",
		dimA, dimB, seed, maxSteps, maxTime, validateEvery, cfg.Incremental)
	startTime := time.Now()

	driver := kmc.NewDriver(cfg, model, tw)
	result, runErr := driver.Run()

	status := trace.Status{
		Outcome:   "complete",
		Reason:    string(result.Reason),
		Steps:     result.Steps,
		FinalTime: result.Time,
	}
	if runErr != nil {
		status.Outcome = "aborted"
		status.Reason = ""
		status.Error = runErr.Error()
	}
	if err := tw.Close(status); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	divacancies, trefoils := model.State().Counts()
	logrus.Infof("Simulation complete (%s): %d steps, t=%g, %d divacancies, %d trefoils, wall time %s",
		result.Reason, result.Steps, result.Time, divacancies, trefoils, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// parseDimensions parses "ARM,ZAG" into two positive unit-cell counts.
func parseDimensions(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("dimensions: expected 2 values separated by ',', got %q", s)
	}
	dims := make([]int, 2)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, 0, fmt.Errorf("dimensions: bad value %q", part)
		}
		if v <= 0 {
			return 0, 0, fmt.Errorf("dimensions: not a positive integer: %d", v)
		}
		dims[i] = v
	}
	return dims[0], dims[1], nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Uint64Var(&seed, "seed", 42, "Seed for the run's pseudo-random source")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 20, "Stop after this many events (0 = unbounded)")
	runCmd.Flags().Float64Var(&maxTime, "max-time", 0, "Stop once simulated time reaches this value (0 = unbounded)")
	runCmd.Flags().IntVar(&validateEvery, "validate-every", 0, "Rebuild and cross-check the event catalog every N steps (0 = off)")
	runCmd.Flags().BoolVar(&noIncremental, "no-incremental", false, "Disable incremental catalog maintenance (full rebuild before every sample)")
	runCmd.Flags().StringVar(&logLevel, "log", "warning", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVarP(&dimensions, "dimensions", "d", "50,50", "PBC grid dimensions as unit cells in each direction, ARM,ZAG")
	runCmd.Flags().StringVarP(&physicsPath, "config", "c", "", "Physics YAML config (rates or barriers per kind, initial state)")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Trace output file (default stdout)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
