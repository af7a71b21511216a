package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/MattNet/minetest-from-models/engine/mesh"
	"github.com/MattNet/minetest-from-models/engine/schematic"
	"github.com/MattNet/minetest-from-models/engine/util"
	"github.com/MattNet/minetest-from-models/engine/voxel"
)

func main() {
	inFile := flag.String("in", "", "input model (.stl, .gltf, .glb, .tri)")
	outFile := flag.String("out", "", "output schematic (.mts or .construction)")
	granularity := flag.Float64("granularity", 1.0, "lattice step size")
	epsilon := flag.Float64("epsilon", util.DefaultEpsilon, "intersection test tolerance")
	strategyName := flag.String("strategy", "bruteforce", "fill strategy: bruteforce or runlength")
	roundInput := flag.Bool("round", false, "round vertex coordinates to one decimal before scanning")
	nodeName := flag.String("node", "default:stone", "node name for occupied voxels")
	workers := flag.Int("workers", 0, "scan goroutines (0 = one per CPU)")
	verify := flag.Bool("verify", false, "re-read the written construction and compare it")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *verbose {
		util.GLOBAL_LOG_LEVEL = util.LogLevelInfo
	} else {
		util.GLOBAL_LOG_LEVEL = util.LogLevelWarning
	}

	if *inFile == "" || *outFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := voxel.DefaultConfig()
	cfg.Granularity = *granularity
	cfg.Epsilon = *epsilon
	cfg.RoundInput = *roundInput
	cfg.NodeName = *nodeName
	cfg.Workers = *workers

	strategy, err := voxel.ParseStrategy(*strategyName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	cfg.Strategy = strategy

	if err := run(*inFile, *outFile, cfg, *verify); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inFile, outFile string, cfg voxel.Config, verify bool) error {
	start := time.Now()
	model, err := mesh.Load(inFile)
	if err != nil {
		return err
	}
	util.LogSystemInfo(fmt.Sprintf("loaded %d triangles from %s", model.TriangleCount(), inFile))

	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	cfg.Progress = func(done, total int) {
		percent := float64(done) * 100 / float64(total)
		if isTTY {
			fmt.Fprintf(os.Stderr, "\r[%5.1f%%] %d/%d columns", percent, done, total)
		} else {
			fmt.Fprintf(os.Stderr, "[PROGRESS] %.1f%%\n", percent)
		}
	}

	voxelizer, err := voxel.NewVoxelizer(model, cfg)
	if err != nil {
		return err
	}
	occupied, err := voxelizer.Run(context.Background())
	if err != nil {
		return err
	}
	if isTTY {
		fmt.Fprintln(os.Stderr)
	}
	if occupied.Len() == 0 {
		return errors.New("no voxels were occupied; is the model a closed surface?")
	}

	switch strings.ToLower(path.Ext(outFile)) {
	case ".mts":
		if verify {
			return errors.New("-verify is only supported for .construction output")
		}
		if err := schematic.SaveMTS(outFile, occupied, cfg.NodeName); err != nil {
			return err
		}
	case ".construction":
		if err := schematic.SaveConstruction(outFile, occupied, cfg.NodeName); err != nil {
			return err
		}
		if verify {
			if err := verifyConstruction(outFile, occupied); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("unsupported output format %q (want .mts or .construction)", path.Ext(outFile))
	}

	util.LogSystemInfo(fmt.Sprintf("wrote %d voxels to %s in %s", occupied.Len(), outFile, time.Since(start).Round(time.Millisecond)))
	return nil
}

func verifyConstruction(filename string, expected *voxel.Set) error {
	construction, err := schematic.LoadConstruction(filename)
	if err != nil {
		return errors.Wrap(err, "verification reload failed")
	}
	if construction.Blocks.Len() != expected.Len() {
		return errors.Errorf("verification failed: wrote %d voxels, read back %d", expected.Len(), construction.Blocks.Len())
	}
	for _, p := range expected.Members() {
		if !construction.Blocks.Contains(p) {
			return errors.Errorf("verification failed: voxel %v missing after reload", p)
		}
	}
	util.LogIOInfo("verification passed")
	return nil
}
