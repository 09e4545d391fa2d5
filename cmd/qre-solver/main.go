package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/golang/glog"

	"github.com/behrlich/qre-solver/pkg/action"
	"github.com/behrlich/qre-solver/pkg/solver"
	"github.com/behrlich/qre-solver/pkg/strategy"
	"github.com/behrlich/qre-solver/pkg/telemetry"
	"github.com/behrlich/qre-solver/pkg/tree"
)

func main() {
	game := flag.String("game", "kuhn", "Game to solve: kuhn or leduc")
	beta := flag.Float64("beta", 10.0, "Target quantal-response temperature")
	tol := flag.Float64("tol", 1e-8, "Newton convergence tolerance on ||R||")
	maxIters := flag.Int("max-iters", 100, "Maximum Newton iterations per beta level")
	output := flag.String("output", "", "Telemetry JSON output path (disabled if empty)")
	verbose := flag.Bool("verbose", false, "Print per-iteration progress to stderr")
	crossValidate := flag.Int("cross-validate", 0, "If > 0, also run CFR for this many iterations and compare exploitability")
	saveStrategy := flag.String("save-strategy", "", "Save the CFR cross-validation strategy profile to a JSON file (only with -cross-validate)")
	loadStrategy := flag.String("load-strategy", "", "Load a strategy profile from a JSON file instead of solving")

	flag.Parse()

	var root *tree.TreeNode
	switch *game {
	case "kuhn":
		root = tree.BuildKuhnTree()
	case "leduc":
		root = tree.BuildLeducTree()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown game %q (want kuhn or leduc)\n", *game)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *loadStrategy != "" {
		profile, err := solver.LoadFromFile(*loadStrategy)
		if err != nil {
			glog.Errorf("loading strategy from %q: %v", *loadStrategy, err)
			os.Exit(1)
		}
		fmt.Printf("Loaded strategy profile with %d information sets\n\n", profile.NumInfoSets())
		exploit, err := profile.Exploitability(root)
		if err != nil {
			glog.Errorf("computing exploitability: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Exploitability against %s: %.6f\n", *game, exploit)
		printProfile(profile)
		return
	}

	var sink *telemetry.Sink
	if *output != "" {
		var err error
		sink, err = telemetry.NewSink(*output)
		if err != nil {
			glog.Errorf("creating telemetry sink at %q: %v", *output, err)
			os.Exit(1)
		}
	}

	index := tree.NewInfoSetIndex(tree.GetInfoSets(root))

	config := solver.DefaultNewtonConfig()
	config.Tol = *tol
	config.MaxIters = *maxIters
	config.Verbose = *verbose

	driver := solver.NewContinuationDriver(config)

	callback := func(b float64, stats solver.IterationStats, w []float64) error {
		if *verbose {
			fmt.Fprintf(os.Stderr, "beta=%.4f iter=%d residual=%.3e status=%s\n",
				b, stats.Iteration, stats.ResidualNorm, stats.Status)
		}
		if sink == nil {
			return nil
		}

		sigma := strategy.FromLogits(w, index)
		ev, err := solver.ExpectedValue(root, sigma)
		if err != nil {
			return err
		}
		exploit, err := solver.Exploitability(root, sigma)
		if err != nil {
			return err
		}
		allEU, err := solver.AllExpectedUtilities(root, sigma, index)
		if err != nil {
			return err
		}

		snap := telemetry.Snapshot{
			Type:           "iteration",
			Iteration:      stats.Iteration,
			ResidualNorm:   stats.ResidualNorm,
			StepNorm:       stats.StepNorm,
			Alpha:          stats.Alpha,
			Lambda:         stats.Lambda,
			Beta:           b,
			Game:           *game,
			Strategy:       sigma.ToJSON(),
			ActionEVs:      actionEVsToJSON(allEU),
			Exploitability: &exploit,
			ExpectedValue:  &ev,
		}
		return sink.LogIteration(snap)
	}

	result, levels, err := driver.Run(root, *beta, callback)
	if err != nil {
		glog.Errorf("Newton solve failed: %v", err)
		os.Exit(1)
	}

	sigma := strategy.FromLogits(result.X, index)
	exploit, err := solver.Exploitability(root, sigma)
	if err != nil {
		glog.Errorf("computing final exploitability: %v", err)
		os.Exit(1)
	}

	totalIters := 0
	for _, lvl := range levels {
		totalIters += lvl.Iterations
	}

	if sink != nil {
		if err := sink.Finish(exploit, totalIters); err != nil {
			glog.Errorf("writing final telemetry: %v", err)
		}
	}

	fmt.Printf("Solved %s at beta=%.4f: status=%s, iterations=%d, exploitability=%.6f\n",
		*game, *beta, result.Status, totalIters, exploit)

	if *crossValidate > 0 {
		cfr := solver.NewCFR()
		profile := cfr.Train(root, *crossValidate)
		cfrExploit, err := profile.Exploitability(root)
		if err != nil {
			glog.Errorf("computing CFR exploitability: %v", err)
			os.Exit(1)
		}
		fmt.Printf("CFR cross-validation (%d iterations): exploitability=%.6f (QRE beta=%.4f gives %.6f)\n",
			*crossValidate, cfrExploit, *beta, exploit)

		if *saveStrategy != "" {
			if err := profile.SaveToFile(*saveStrategy); err != nil {
				glog.Errorf("saving CFR strategy to %q: %v", *saveStrategy, err)
				os.Exit(1)
			}
			fmt.Printf("CFR strategy profile saved to %s\n", *saveStrategy)
		}
	}

	printSigma(sigma, index)
}

// printSigma prints the solved QRE strategy's action probabilities, sorted
// by information-set id for deterministic output.
func printSigma(sigma *strategy.Strategy, index *tree.InfoSetIndex) {
	fmt.Printf("\n=== STRATEGY ===\n\n")

	ids := sigma.InfoSetIDs()
	sort.Strings(ids)

	for _, id := range ids {
		probs, err := sigma.Probs(id)
		if err != nil {
			continue
		}

		fmt.Printf("InfoSet: %s\n", id)
		is := index.InfoSetAt(index.IndexOf(id))
		for i, a := range is.Actions {
			if probs[i] > 0.001 {
				fmt.Printf("  %s: %.1f%%\n", actionName(a), probs[i]*100)
			}
		}
		fmt.Printf("\n")
	}
}

// printProfile prints a CFR strategy profile's average strategies, sorted
// by information-set id.
func printProfile(profile *solver.StrategyProfile) {
	fmt.Printf("\n=== STRATEGY ===\n\n")

	all := profile.All()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		strat := all[id]
		avg := strat.GetAverageStrategy()
		fmt.Printf("InfoSet: %s\n", id)
		for i, a := range strat.Actions {
			if avg[i] > 0.001 {
				fmt.Printf("  %s: %.1f%%\n", actionName(a), avg[i]*100)
			}
		}
		fmt.Printf("\n")
	}
}

func actionName(a action.Action) string {
	return a.Type.String()
}

// actionEVsToJSON renders AllExpectedUtilities' per-info-set action.Type
// keys as the telemetry "action_evs" shape: info-set id -> action name ->
// expected utility.
func actionEVsToJSON(allEU map[string]map[action.Type]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(allEU))
	for id, row := range allEU {
		named := make(map[string]float64, len(row))
		for t, eu := range row {
			named[t.String()] = eu
		}
		out[id] = named
	}
	return out
}
