// Command timetable-solver is the diagnostic CLI for the course
// timetabling solver: it reads a solver-input JSON record, runs the
// backtracking engine, and reports the solution or proves
// infeasibility.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/russross/timetable-solver/internal/config"
	"github.com/russross/timetable-solver/internal/domain"
	"github.com/russross/timetable-solver/internal/engine"
	"github.com/russross/timetable-solver/internal/graph"
	"github.com/russross/timetable-solver/internal/input"
	"github.com/russross/timetable-solver/internal/logging"
	"github.com/russross/timetable-solver/internal/metrics"
	"github.com/russross/timetable-solver/internal/state"
	"github.com/russross/timetable-solver/internal/stats"
	"github.com/russross/timetable-solver/internal/tree"
)

// Exit codes: 0 solution found, 1 no-solution proven, 2 malformed
// input, 3 a recovered internal invariant violation.
const (
	exitSolutionFound = 0
	exitInfeasible    = 1
	exitMalformed     = 2
	exitInvariant     = 3
)

var (
	logLevel    = "info"
	logFormat   = "console"
	metricsAddr = ""

	treePath  = ""
	statsPath = ""
	outPath   = ""
	timeout   = time.Duration(0)
)

func main() {
	log.SetFlags(log.Ltime)

	root := &cobra.Command{
		Use:   "timetable-solver",
		Short: "University course timetabling solver",
		Long: "A constraint-satisfaction solver for weekly course timetabling\n" +
			"built on MRV/degree variable ordering, LCV value ordering, and\n" +
			"exhaustive backtracking search.",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", logFormat, "log format (console, json)")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", metricsAddr, "address to serve /metrics on (empty disables)")

	cmdSolve := &cobra.Command{
		Use:   "solve <input-file>",
		Short: "Solve a timetabling input and report the schedule",
		Args:  cobra.ExactArgs(1),
		Run:   CommandSolve,
	}
	cmdSolve.Flags().StringVar(&treePath, "tree", treePath, "write the decision tree as JSON to this path")
	cmdSolve.Flags().StringVar(&statsPath, "stats", statsPath, "write the statistics report as text to this path")
	cmdSolve.Flags().StringVar(&outPath, "out", outPath, "write the solver-output JSON to this path (default: stdout)")
	cmdSolve.Flags().DurationVar(&timeout, "timeout", timeout, "cancel the search after this long (0 disables)")

	cmdTree := &cobra.Command{
		Use:   "tree <input-file>",
		Short: "Solve an input and emit only the decision tree as JSON on stdout",
		Args:  cobra.ExactArgs(1),
		Run:   CommandTree,
	}

	cmdStats := &cobra.Command{
		Use:   "stats <input-file>",
		Short: "Solve an input and emit only the statistics report on stdout",
		Args:  cobra.ExactArgs(1),
		Run:   CommandStats,
	}

	root.AddCommand(cmdSolve, cmdTree, cmdStats)

	if err := root.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// CommandSolve implements the `solve` subcommand. It calls os.Exit
// directly so the documented exit codes are exact.
func CommandSolve(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if timeout > 0 {
		cfg.SolveTimeout = timeout
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Sugar().Warnf("metrics listener stopped: %v", err)
			}
		}()
	}

	f, err := os.Open(args[0])
	if err != nil {
		logger.Sugar().Errorf("opening input file: %v", err)
		os.Exit(exitMalformed)
	}
	defer f.Close()

	model, err := input.Decode(f)
	if err != nil {
		logger.Sugar().Errorf("invalid input: %v", err)
		os.Exit(exitMalformed)
	}

	logger.Sugar().Infof("loaded model: %d groups, %d courses, %d instructors",
		len(model.Groups), len(model.Courses), len(model.Instructors))

	eng := engine.New(model)
	logger.Sugar().Info("conflict graph built, starting search")

	if cfg.SolveTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.SolveTimeout)
		defer cancel()
		eng.Cancel = ctx
	}

	exitCode := runSolveRecovered(eng, model, recorder, logger.Sugar())
	os.Exit(exitCode)
}

// runSolveRecovered runs one solve and converts an invariant-violation
// panic into exit code 3 instead of letting it crash the process with a
// raw stack trace.
func runSolveRecovered(eng *engine.Engine, model *domain.Model, recorder *metrics.Recorder, log *zap.SugaredLogger) (code int) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*state.InvariantViolation); ok {
				log.Errorf("internal invariant violation: %v", r)
				code = exitInvariant
				return
			}
			panic(r)
		}
	}()

	start := time.Now()
	result := eng.Solve()
	elapsed := time.Since(start)

	st := stats.Derive(result.Tree, elapsed)
	recorder.Observe(st.NodesExplored, st.Backtracks, st.TimeSeconds, result.OK)

	out := input.BuildOutput(model, result.OK, result.Schedule, st)
	if err := writeOutput(out); err != nil {
		log.Errorf("writing output: %v", err)
	}

	if treePath != "" {
		if err := writeTreeFile(result.Tree); err != nil {
			log.Errorf("writing tree: %v", err)
		}
	}
	if statsPath != "" {
		// The soft-constraint score is diagnostic only: it never
		// influences OK, the schedule, or the exit code, and it is
		// appended to the --stats report alone, never the solver-output
		// JSON record.
		var soft stats.SoftScore
		if result.OK {
			soft = stats.DeriveSoftScore(model, result.Schedule)
		}
		if err := writeStatsFile(st, soft, eng.Graph); err != nil {
			log.Errorf("writing stats: %v", err)
		}
	}

	for _, w := range result.Warnings {
		log.Warnf("completeness warning: group %d course %d wanted %d got %d", w.Group, w.Course, w.Wanted, w.Got)
	}

	if !result.OK {
		log.Info("no schedule found: proven infeasible under the stated hard constraints")
		return exitInfeasible
	}
	log.Infof("schedule found: %d nodes explored, %d backtracks in %.3fs",
		st.NodesExplored, st.Backtracks, st.TimeSeconds)
	return exitSolutionFound
}

// loadModel opens and decodes an input file, exiting with the
// malformed-input code on any failure.
func loadModel(path string) *domain.Model {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("opening input file: %v", err)
		os.Exit(exitMalformed)
	}
	defer f.Close()

	model, err := input.Decode(f)
	if err != nil {
		log.Printf("invalid input: %v", err)
		os.Exit(exitMalformed)
	}
	return model
}

// CommandTree implements the `tree` subcommand: one solve, decision
// tree JSON on stdout, exit codes 0, 1 and 2 as for solve. An internal
// invariant violation is not recovered here and crashes the process.
func CommandTree(cmd *cobra.Command, args []string) {
	model := loadModel(args[0])
	result := engine.New(model).Solve()

	data, err := result.Tree.MarshalJSON()
	if err != nil {
		log.Fatalf("encoding tree: %v", err)
	}
	os.Stdout.Write(append(data, '\n'))

	if !result.OK {
		os.Exit(exitInfeasible)
	}
	os.Exit(exitSolutionFound)
}

// CommandStats implements the `stats` subcommand: one solve, text
// statistics report on stdout, exit codes 0, 1 and 2 as for solve. An
// internal invariant violation is not recovered here and crashes the
// process.
func CommandStats(cmd *cobra.Command, args []string) {
	model := loadModel(args[0])
	eng := engine.New(model)

	start := time.Now()
	result := eng.Solve()
	st := stats.Derive(result.Tree, time.Since(start))

	var soft stats.SoftScore
	if result.OK {
		soft = stats.DeriveSoftScore(model, result.Schedule)
	}
	os.Stdout.Write(statsReport(st, soft, eng.Graph))

	if !result.OK {
		os.Exit(exitInfeasible)
	}
	os.Exit(exitSolutionFound)
}

func writeOutput(out input.Output) error {
	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return input.WriteOutput(f, out)
	}
	return input.WriteOutput(w, out)
}

func writeTreeFile(t *tree.Tree) error {
	data, err := t.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(treePath, data, 0644)
}

func writeStatsFile(st stats.Statistics, soft stats.SoftScore, g *graph.Graph) error {
	return os.WriteFile(statsPath, statsReport(st, soft, g), 0644)
}

// statsReport renders the full text statistics report: the solve
// statistics record, the node-kind breakdown, the diagnostic
// soft-constraint score, and the conflict-graph analysis.
func statsReport(st stats.Statistics, soft stats.SoftScore, g *graph.Graph) []byte {
	var buf []byte
	buf = append(buf, fmt.Sprintf(
		"nodes_explored: %d\nbacktracks: %d\nmax_depth: %d\ntime_seconds: %.4f\n"+
			"nodes_per_second: %.1f\nbranching_factor: %.3f\nsuccess_rate: %.3f\nsolution_length: %d\n",
		st.NodesExplored, st.Backtracks, st.MaxDepth, st.TimeSeconds,
		st.NodesPerSecond, st.BranchingFactor, st.SuccessRate, st.SolutionLength,
	)...)
	buf = append(buf, nodesByKindReport(st)...)
	buf = append(buf, softScoreReport(soft)...)
	buf = append(buf, graphAnalysisReport(g)...)
	return buf
}

// graphAnalysisReport renders the conflict graph's connectivity summary
// plus the diagnostic-only analysis: an approximate chromatic number and
// slot feasibility estimate, a sample of triangle cliques, and the
// group/instructor conflict split. None of this gates the search; it is
// reporting over the graph the engine already built.
func graphAnalysisReport(g *graph.Graph) []byte {
	gst := g.Stats()
	var buf []byte
	buf = append(buf, fmt.Sprintf(
		"graph_nodes: %d\ngraph_edges: %d\ngraph_avg_degree: %.3f\ngraph_density: %.4f\n",
		gst.Nodes, gst.Edges, gst.AvgDegree, gst.Density,
	)...)

	chromatic := g.ChromaticNumber()
	feasible, reason := g.FeasibilityEstimate(len(domain.Slots(domain.Morning)))
	buf = append(buf, fmt.Sprintf("graph_chromatic_number_estimate: %d\ngraph_feasibility_estimate: %t (%s)\n",
		chromatic, feasible, reason)...)

	breakdown := g.ConflictsByType()
	buf = append(buf, fmt.Sprintf(
		"graph_conflicts_group: %d (%.1f%%)\ngraph_conflicts_instructor: %d (%.1f%%)\n",
		breakdown.GroupConflicts, breakdown.PercentGroup,
		breakdown.InstructorConflicts, breakdown.PercentInstructor,
	)...)

	cliques := g.FindCliques(5)
	buf = append(buf, fmt.Sprintf("graph_sample_cliques: %d\n", len(cliques))...)
	for _, c := range cliques {
		buf = append(buf, fmt.Sprintf("  - %v\n", []int(c))...)
	}
	return buf
}

// softScoreReport renders the diagnostic soft-constraint badness total
// and its contributing problems, in descending badness order.
func softScoreReport(soft stats.SoftScore) []byte {
	var buf []byte
	buf = append(buf, fmt.Sprintf("soft_score_total_badness: %d\n", soft.TotalBadness)...)
	for _, p := range soft.Problems {
		buf = append(buf, fmt.Sprintf("  - %s\n", p.Message)...)
	}
	return buf
}

func nodesByKindReport(st stats.Statistics) []byte {
	data, _ := json.MarshalIndent(map[string]any{"nodes_by_kind": st.NodesByKind}, "", "  ")
	return append(data, '\n')
}
