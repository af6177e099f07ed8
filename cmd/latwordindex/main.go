// Command latwordindex builds a word index from character lattices.
//
//	latwordindex [options] "<separator-symbols>" <lattice-rspecifier>
//	latwordindex -nbest 1000 "1 2" ark:lats.txt
//
// For every utterance it prints one line per word,
//
//	<key> <log-probability> <characters...> <frames...>
//
// where the frames are the start frame of each character followed by the end
// frame of the last one, or only the word boundaries with -word-segmentation.
// Scores are lower bounds of the probability that the word is present in
// the transcription, usually very close to the exact value.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/profile"

	wordindex "github.com/ieee0824/wordindex-go"
	"github.com/ieee0824/wordindex-go/index"
)

func main() {
	code := run(os.Args[1:], os.Stdout, os.Stderr)
	glog.Flush()
	os.Exit(code)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("latwordindex", flag.ContinueOnError)
	fs.SetOutput(stderr)
	// glog registers -v, -logtostderr, ... on the default flag set
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		fs.Var(f.Value, f.Name, f.Usage)
	})

	def := index.DefaultConfig()
	acousticScale := fs.Float64("acoustic-scale", def.AcousticScale, "scaling factor for acoustic likelihoods in the lattices")
	graphScale := fs.Float64("graph-scale", def.GraphScale, "scaling factor for graph probabilities in the lattices")
	insPenalty := fs.Float64("insertion-penalty", def.InsertionPenalty, "penalty added to lattice arcs with a non-epsilon label")
	beam := fs.Float64("beam", math.Inf(1), "pruning beam, applied after scaling and the insertion penalty")
	nbest := fs.Int("nbest", def.NBest, "number of words extracted per utterance")
	delta := fs.Float64("delta", def.Delta, "quantization delta used by determinization")
	maxMem := fs.Int64("max-mem", def.MaxMem, "memory ceiling of determinization in bytes (0 = unlimited)")
	onlyBest := fs.Bool("only-best-segmentation", false, "keep only the best segmentation of each word")
	wordSeg := fs.Bool("word-segmentation", false, "print word boundaries instead of character boundaries")
	determinize := fs.Bool("determinize", def.Determinize, "merge paths of the same word and segmentation")
	useLog := fs.Bool("use-log", def.UseLog, "compute forward/backward scores with log-sum-exp instead of max")
	symbolsPath := fs.String("symbols", "", "symbol table used to print characters")
	symbolsEnc := fs.String("symbols-encoding", "", "character encoding of the symbol table (default UTF-8)")
	strict := fs.Bool("strict", true, "abort on malformed lattices instead of skipping them")
	cpuProfile := fs.String("cpuprofile", "", "write a CPU profile to this directory")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: latwordindex [options] \"<separator-symbols>\" <lattice-rspecifier>")
		fmt.Fprintln(stderr, "  e.g.: latwordindex \"1 2\" ark:lats.txt")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}

	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.NoShutdownHook).Stop()
	}

	cfg := def
	cfg.AcousticScale = *acousticScale
	cfg.GraphScale = *graphScale
	cfg.InsertionPenalty = *insPenalty
	cfg.Beam = *beam
	cfg.NBest = *nbest
	cfg.Delta = *delta
	cfg.MaxMem = *maxMem
	cfg.OnlyBestSegmentation = *onlyBest
	cfg.WordSegmentation = *wordSeg
	cfg.Determinize = *determinize
	cfg.UseLog = *useLog

	opts := []wordindex.Option{
		wordindex.WithConfig(cfg),
		wordindex.WithStrict(*strict),
	}
	if *symbolsPath != "" {
		opts = append(opts, wordindex.WithSymbolsFile(*symbolsPath, *symbolsEnc))
	}
	ix, err := wordindex.NewIndexer(fs.Arg(0), opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	st, err := ix.RunFile(fs.Arg(1), stdout)
	if err != nil {
		glog.Errorf("run %s: %v", st.RunID, err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if st.Failed > 0 {
		fmt.Fprintf(stderr, "%d of %d utterances failed\n", st.Failed, st.Utterances)
	}
	return 0
}
