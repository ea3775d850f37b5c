package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"geocoin.app/internal/logging"
	"geocoin.app/internal/persistence/indexdb"
	persistlog "geocoin.app/internal/persistence/log"
	"geocoin.app/internal/protocol"
	"geocoin.app/internal/sim/game"
	"geocoin.app/internal/sim/location"
	"geocoin.app/internal/sim/tuning"
)

func main() {
	var (
		configDir   = flag.String("configs", "./configs", "config directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		runID       = flag.String("run", "", "run id (default: random uuid)")
		noJournal   = flag.Bool("no_journal", false, "do not write the command journal")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite journal index")
		samplesPath = flag.String("samples", "", "yaml list of {lat,lng} samples to feed as the location provider (optional)")
		loopSamples = flag.Bool("loop_samples", false, "restart the samples file when it runs out")
		quiet       = flag.Bool("quiet", false, "do not print cache render/remove lines")
	)
	flag.Parse()

	logOpts, err := logging.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(logOpts, os.Stderr)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Warnf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if err := tuning.ApplyEnv(&tune); err != nil {
		logger.Fatalf("%v", err)
	}

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = uuid.NewString()
	}
	log := logger.WithField("run", id)

	view := newTermView(os.Stdout, *quiet)
	g, err := game.New(game.Config{Tuning: tune}, game.WithView(view), game.WithLogger(log))
	if err != nil {
		log.Fatalf("new game: %v", err)
	}

	runDir := filepath.Join(*dataDir, "runs", id)
	journal, closeJournal, err := openJournal(g.Header(id), runDir, *noJournal, *disableDB, log)
	if err != nil {
		log.Fatalf("open journal: %v", err)
	}
	defer closeJournal()
	if journal != nil {
		g.SetJournal(journal)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var samples <-chan location.Sample
	if p := strings.TrimSpace(*samplesPath); p != "" {
		pts, err := location.LoadSamples(p)
		if err != nil {
			log.Fatalf("load samples: %v", err)
		}
		samples = location.Replay{
			Samples:  pts,
			Interval: time.Duration(tune.Geolocation.IntervalMs) * time.Millisecond,
			Loop:     *loopSamples,
		}.Start(ctx)
	}

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, samples) }()

	log.WithFields(logrus.Fields{
		"seed":   tune.Seed,
		"origin": fmt.Sprintf("%v,%v", tune.Origin.Lat, tune.Origin.Lng),
		"geo":    tune.Geolocation.Enabled,
	}).Info("game started")

	prompt(ctx, g, view, os.Stdin, os.Stdout)

	g.Stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("game loop")
	}
	m := g.Metrics()
	log.WithFields(logrus.Fields{"commands": m.Seq, "wallet": m.Wallet, "snapshots": m.Snapshots}).Info("game stopped")
}

func openJournal(h game.JournalHeader, runDir string, noJournal, disableDB bool, log logrus.FieldLogger) (game.Journal, func(), error) {
	var (
		journals game.MultiJournal
		closers  []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.WithError(err).Warn("close journal")
			}
		}
	}
	if !noJournal {
		jl := persistlog.NewJournalLogger(runDir, h)
		journals = append(journals, jl)
		closers = append(closers, jl.Close)
		log.WithField("dir", runDir).Info("journal")
	}
	if !disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(runDir, "index.sqlite"))
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, idx.Close)
		if err := idx.RecordRun(h); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		journals = append(journals, idx)
	}
	if len(journals) == 0 {
		return nil, closeAll, nil
	}
	return journals, closeAll, nil
}

const helpText = `commands:
  up | down | left | right      move one step
  locate <lat> <lng>            location sample (geolocation must be on)
  take <i,j> | deposit <i,j>    move a coin between a cache and the wallet
  save | restore <n>            snapshot history
  geo                           toggle geolocation
  caches                        list caches in view
  status                        game metrics
  quit`

func prompt(ctx context.Context, g *game.Game, view *termView, in io.Reader, out io.Writer) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return
		case "help", "?":
			fmt.Fprintln(out, helpText)
			continue
		case "caches":
			view.list(out)
			continue
		case "status":
			b, _ := json.MarshalIndent(g.Metrics(), "", "  ")
			fmt.Fprintln(out, string(b))
			continue
		}

		cmd, err := protocol.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(out, "?", err)
			continue
		}
		res, err := g.Submit(ctx, cmd)
		if err != nil {
			fmt.Fprintln(out, "stopped:", err)
			return
		}
		printResult(out, res)
	}
}

func printResult(out io.Writer, res game.Result) {
	if !res.OK {
		fmt.Fprintf(out, "#%d %s rejected: %s %s\n", res.Seq, res.Type, res.Code, res.Message)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s ok wallet=%d", res.Seq, res.Type, res.Wallet)
	if res.Coin != nil {
		fmt.Fprintf(&b, " coin=%s cache=%d", res.Coin, res.CacheCoins)
	}
	if res.Snapshot != nil {
		fmt.Fprintf(&b, " snapshot=%d", *res.Snapshot)
	}
	if res.Diff != nil {
		fmt.Fprintf(&b, " spawned=%d retired=%d kept=%d", len(res.Diff.Spawned), len(res.Diff.Retired), len(res.Diff.Kept))
	}
	fmt.Fprintln(out, b.String())
}
