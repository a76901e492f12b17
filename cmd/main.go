package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/saravn-ent/tamilring/config"
	"github.com/saravn-ent/tamilring/internal/engine"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/source"
	"github.com/saravn-ent/tamilring/internal/transcode"
)

// One-shot cutter: trims a ring out of a local audio file and writes
// both delivery formats without going through the HTTP pipeline.
func main() {
	input := flag.String("input", "", "Path to the source audio file (required)")
	start := flag.Float64("start", -1, "Region start in seconds (default: centered)")
	end := flag.Float64("end", -1, "Region end in seconds (default: centered)")
	fadeIn := flag.Bool("fade-in", false, "Apply a fade-in at the region start")
	fadeOut := flag.Bool("fade-out", false, "Apply a fade-out at the region end")
	outDir := flag.String("out", "output", "Directory for the encoded files")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *input == "" {
		log.Fatal("Missing required flag: -input")
	}

	cfg, err := config.Load("./config/config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	engineCfg := engine.Config{
		FFmpegPath:  cfg.Engine.FFmpegPath,
		FFprobePath: cfg.Engine.FFprobePath,
		ScratchRoot: cfg.Engine.ScratchDir,
	}

	eng, err := engine.Acquire(ctx, engineCfg)
	if err != nil {
		log.Fatal(err)
	}

	src, err := source.Decode(ctx, eng, *input)
	if err != nil {
		log.Fatal(err)
	}

	model := region.NewModel(src.Duration)
	if *start >= 0 && *end >= 0 {
		model.SetBoth(*start, *end)
	} else if *start >= 0 {
		model.SetStart(*start)
	} else if *end >= 0 {
		model.SetEnd(*end)
	}
	if *fadeIn {
		model.ToggleFadeIn()
	}
	if *fadeOut {
		model.ToggleFadeOut()
	}
	snap := model.Snapshot()

	fmt.Printf("Cutting %.1fs-%.1fs (%.1fs) from %s\n", snap.Start, snap.End, snap.Length(), *input)

	if err := os.MkdirAll(*outDir, os.ModePerm); err != nil {
		log.Fatal(err)
	}

	profiles := []transcode.Profile{transcode.Universal, transcode.Device}
	bar := progressbar.NewOptions(
		len(profiles),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		// progressbar.ThemeASCII copied from v3.18.0; v3.15.0 (newest
		// version compatible with Go 1.21) does not define it.
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: ".",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Encoding ring...[reset]"),
	)

	orchestrator := transcode.NewOrchestrator(engineCfg)
	base := strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))

	for _, profile := range profiles {
		asset, err := orchestrator.Transcode(ctx, src, snap, profile)
		if err != nil {
			log.Fatal(err)
		}

		outPath := filepath.Join(*outDir, base+"."+profile.Extension)
		if err := os.WriteFile(outPath, asset.Data, 0644); err != nil {
			log.Fatal(err)
		}

		_ = bar.Add(1)
	}

	fmt.Println()
	fmt.Printf("Wrote %d files to %s\n", len(profiles), *outDir)
}
