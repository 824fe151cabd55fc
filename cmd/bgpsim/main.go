// Command bgpsim ingests a CAIDA AS-relationship snapshot, runs security-
// extension simulation trials over it, and reports per-AS data-plane
// outcomes. Grounded on the teacher's main.go/args.go dispatch idiom:
// one subcommand per os.Args[1], each with its own flag.NewFlagSet.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/Emeline-1/pool"

	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/asgraph"
	"github.com/Emeline-1/bgpsim/internal/caida"
	"github.com/Emeline-1/bgpsim/internal/dataplane"
	"github.com/Emeline-1/bgpsim/internal/engine"
	"github.com/Emeline-1/bgpsim/internal/graphsetup"
	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/runconfig"
	"github.com/Emeline-1/bgpsim/internal/scenario"
	"github.com/Emeline-1/bgpsim/internal/store"
)

var errLog = log.New(os.Stderr, "", log.LstdFlags)

func usage() {
	println("\nUsage of bgpsim:\n")
	println("bgpsim has the following subcommands:")
	println("  ingest: parse a CAIDA as-relationships file into an ASGraph JSON cache.")
	println("  run: run a scenario's trials over a cached ASGraph and report outcomes.\n")
	println("Type")
	println("  bgpsim [subcommand] -h")
	println("for further information on each subcommand.")
}

func main() {
	if len(os.Args) == 1 {
		usage()
		return
	}
	switch os.Args[1] {
	case "ingest":
		cmdIngest(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func cmdIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	in := fs.String("in", "", "CAIDA serial-2 as-relationships file")
	out := fs.String("out", "", "output ASGraph JSON file")
	cachePath := fs.String("cache", "", "optional sqlite cache database")
	cacheKey := fs.String("key", "default", "cache key to store the graph under")
	fs.Parse(args)

	if *in == "" || *out == "" {
		errLog.Fatal("[ingest]: -in and -out are required")
	}

	specs, err := caida.Ingest(*in)
	if err != nil {
		errLog.Fatalf("[ingest]: %v", err)
	}
	g := asgraph.New(specs)
	if err := graphsetup.Finalize(g); err != nil {
		errLog.Fatalf("[ingest]: extra-setup: %v", err)
	}

	data, err := json.Marshal(g)
	if err != nil {
		errLog.Fatalf("[ingest]: marshal graph: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		errLog.Fatalf("[ingest]: write %s: %v", *out, err)
	}

	if *cachePath != "" {
		st, err := store.Open(*cachePath)
		if err != nil {
			errLog.Fatalf("[ingest]: open cache: %v", err)
		}
		defer st.Close()
		if err := st.SaveGraph(*cacheKey, data); err != nil {
			errLog.Fatalf("[ingest]: save cache: %v", err)
		}
	}

	fmt.Printf("ingested %d ASes\n", g.Len())
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	graphPath := fs.String("graph", "", "ASGraph JSON file")
	configPath := fs.String("config", "", "RunConfig JSON file")
	trials := fs.Int("trials", 1, "number of trials to run")
	outPath := fs.String("out", "", "optional sqlite database to record outcomes")
	fs.Parse(args)

	if *graphPath == "" || *configPath == "" {
		errLog.Fatal("[run]: -graph and -config are required")
	}

	graphData, err := os.ReadFile(*graphPath)
	if err != nil {
		errLog.Fatalf("[run]: read graph: %v", err)
	}
	g := new(asgraph.Graph)
	if err := json.Unmarshal(graphData, g); err != nil {
		errLog.Fatalf("[run]: decode graph: %v", err)
	}

	configData, err := os.ReadFile(*configPath)
	if err != nil {
		errLog.Fatalf("[run]: read config: %v", err)
	}
	rc, err := runconfig.Load(configData)
	if err != nil {
		errLog.Fatalf("[run]: %v", err)
	}
	sc, err := scenarioFromConfig(rc)
	if err != nil {
		errLog.Fatalf("[run]: %v", err)
	}
	dest, err := rc.DestIPAddr()
	if err != nil {
		errLog.Fatalf("[run]: dest ip: %v", err)
	}

	var st *store.Store
	if *outPath != "" {
		st, err = store.Open(*outPath)
		if err != nil {
			errLog.Fatalf("[run]: open output store: %v", err)
		}
		defer st.Close()
	}

	// Trials are embarrassingly parallel: each trial owns its own
	// engine.Engine over the shared, read-only graph (spec.md section
	// 5). Fan-out uses the same worker pool the teacher uses for its
	// own embarrassingly-parallel file parsing (readers.go).
	var mu sync.Mutex
	tokens := make([]string, *trials)
	for i := range tokens {
		tokens[i] = strconv.Itoa(i)
	}
	runTrial := func(token string) {
		trial, _ := strconv.Atoi(token)
		if sc.PreAggregationHook != nil {
			sc.PreAggregationHook()
		}
		e := engine.New(g)
		for round := 0; round < rc.MinPropagationRounds; round++ {
			if err := e.Run(sc, round); err != nil {
				errLog.Printf("[run]: trial %d round %d: %v", trial, round, err)
				return
			}
			if sc.PostPropagationHook != nil {
				sc.PostPropagationHook(round, trial, sc.PercentAdopt(g.Len()))
			}
		}
		prop := dataplane.NewPropagator(g, e.Store, sc.AttackerASNs, sc.LegitimateOriginASNs)
		outcomes := prop.Outcomes(dest)

		mu.Lock()
		defer mu.Unlock()
		if st != nil {
			if err := st.SaveOutcomes(trial, outcomes); err != nil {
				errLog.Printf("[run]: trial %d: save outcomes: %v", trial, err)
			}
		}
	}
	pool.Launch_pool(8, tokens, runTrial)

	fmt.Printf("ran %d trial(s) of %q\n", *trials, rc.Name)
}

func scenarioFromConfig(rc *runconfig.RunConfig) (*scenario.Scenario, error) {
	roas, err := rc.ROAs()
	if err != nil {
		return nil, err
	}
	dest, err := rc.DestIPAddr()
	if err != nil {
		return nil, err
	}
	seeds, err := seedAnnouncements(rc)
	if err != nil {
		return nil, err
	}
	return &scenario.Scenario{
		AttackerASNs:         rc.AttackerASNs,
		LegitimateOriginASNs: rc.LegitimateOriginASNs,
		AdoptingASNs:         rc.AdoptingASNs,
		ROAs:                 roas,
		DestIP:               dest,
		SeedAnnouncements:    seeds,
		MinPropagationRounds: rc.MinPropagationRounds,
	}, nil
}

// seedAnnouncements reconstructs one origin announcement per wire seed
// entry in the run config, defaulting next_hop_asn to the origin ASN and
// recv_relationship to ORIGIN exactly as a freshly originated route would
// be (spec.md section 3, "seed_ann").
func seedAnnouncements(rc *runconfig.RunConfig) (map[int32][]announce.Announcement, error) {
	out := make(map[int32][]announce.Announcement)
	for _, w := range rc.SeedAnnouncements {
		prefix, err := ipaddr.Parse(w.Prefix)
		if err != nil {
			return nil, fmt.Errorf("seed announcement for AS %d: %w", w.ASN, err)
		}
		ann, err := announce.New(prefix, w.ASPath, announce.WithNextHopASN(w.ASN), announce.WithRecvRelationship(announce.ORIGIN))
		if err != nil {
			return nil, fmt.Errorf("seed announcement for AS %d: %w", w.ASN, err)
		}
		out[w.ASN] = append(out[w.ASN], ann)
	}
	return out, nil
}
