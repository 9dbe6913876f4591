// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/geoframe/internal/vectorize"
	"github.com/petar-djukic/geoframe/pkg/geoframe"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

// newPipeline builds the pipeline from flags, environment and config file.
func newPipeline() (*geoframe.Pipeline, error) {
	fw, fh, err := parseFrame(viper.GetString("frame"))
	if err != nil {
		return nil, err
	}
	cfg := geoframe.Config{
		ProblemDir:   viper.GetString("problem-dir"),
		SpecFile:     viper.GetString("spec-file"),
		FrameWidth:   fw,
		FrameHeight:  fh,
		DPI:          viper.GetInt("dpi"),
		Threshold:    viper.GetFloat64("threshold"),
		TracerCmd:    viper.GetString("tracer"),
		TraceTimeout: viper.GetDuration("trace-timeout"),
		NoAxisHints:  viper.GetBool("no-axis-hints"),
		MaxRetries:   viper.GetInt("max-retries"),
		NoGit:        viper.GetBool("no-git"),
		Logger:       newLogger(viper.GetInt("verbose")),
	}
	p, err := geoframe.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return p, nil
}

// parseFrame reads "WxH".
func parseFrame(s string) (w, h float64, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("frame %q: want WxH", s)
	}
	if w, err = strconv.ParseFloat(parts[0], 64); err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("frame %q: bad width", s)
	}
	if h, err = strconv.ParseFloat(parts[1], 64); err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("frame %q: bad height", s)
	}
	return w, h, nil
}

// parseCrop reads "x0,y0,x1,y1" (or "x,y,w,h").
func parseCrop(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop %q: want four comma-separated integers", s)
	}
	out := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("crop %q: %v", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// printJSON outputs v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// newVectorizeCmd creates the "vectorize" command.
func newVectorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Trace a diagram into vector anchors",
		Long: "Vectorize traces the image into an anchor item printed to stdout. With --regions, " +
			"every Picture region is vectorized and vector_anchors.json is written to the problem directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, _ := cmd.Flags().GetString("image")
			regionsPath, _ := cmd.Flags().GetString("regions")
			cropFlag, _ := cmd.Flags().GetString("crop")

			p, err := newPipeline()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			if regionsPath != "" {
				regions, err := vectorize.LoadRegions(regionsPath)
				if err != nil {
					return err
				}
				doc, route, err := p.VectorizeProblem(ctx, imagePath, regions)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"route": route, "run_id": doc.RunID, "items": len(doc.VectorAnchors)})
			}

			crop, err := parseCrop(cropFlag)
			if err != nil {
				return err
			}
			item, err := p.Vectorize(ctx, imagePath, crop)
			if err != nil {
				return err
			}
			return printJSON(item)
		},
	}
	cmd.Flags().StringP("image", "i", "", "Problem image (required)")
	cmd.Flags().String("regions", "", "OCR regions JSON; vectorize every Picture region")
	cmd.Flags().String("crop", "", "Crop box x0,y0,x1,y1")
	cmd.MarkFlagRequired("image")
	return cmd
}

// newEnsureCmd creates the "ensure" command.
func newEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Print spec.json, creating a default draft if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := p.Ensure(ctx)
			if err != nil {
				return err
			}
			return printJSON(s)
		},
	}
}

// newGenerateCmd creates the "generate" command.
func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a new draft spec.json",
		Long:  "Generate writes a draft from --template, or the default draft. An existing document is kept unless --overwrite is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			templatePath, _ := cmd.Flags().GetString("template")
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			var template []byte
			if templatePath != "" {
				data, err := os.ReadFile(templatePath)
				if err != nil {
					return fmt.Errorf("reading template: %w", err)
				}
				template = data
			}

			p, err := newPipeline()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := p.Generate(ctx, template, overwrite)
			if err != nil {
				return err
			}
			return printJSON(s)
		},
	}
	cmd.Flags().StringP("template", "t", "", "Spec JSON to start from")
	cmd.Flags().Bool("overwrite", false, "Replace an existing spec.json")
	return cmd
}

// newSolveCmd creates the "solve" command.
func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve spec.json into coordinates",
		Long:  "Solve computes the figure's points and writes the solved document. With --all, every spec_<i>.json is solved in index order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			all, _ := cmd.Flags().GetBool("all")

			p, err := newPipeline()
			if err != nil {
				return err
			}

			if all {
				outcomes, err := p.SolveAll(overwrite)
				if err != nil {
					return err
				}
				failed := 0
				for _, o := range outcomes {
					line := fmt.Sprintf("%s\t%s", o.Status, o.Path)
					if o.Err != nil {
						failed++
						line += "\t" + o.Err.Error()
					}
					fmt.Println(line)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d specs failed", failed, len(outcomes))
				}
				return nil
			}

			s, err := p.Solve(overwrite)
			if err != nil {
				return err
			}
			return printJSON(s)
		},
	}
	cmd.Flags().Bool("overwrite", false, "Re-solve an already solved document")
	cmd.Flags().Bool("all", false, "Solve every spec_<i>.json in the problem directory")
	return cmd
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last spec revision",
		Long:  "Undo restores the files of the last geoframe commit and moves HEAD back to its parent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}
			paths, err := p.Undo()
			if err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}
			fmt.Printf("Reverted last geoframe revision: %s\n", strings.Join(paths, ", "))
			return nil
		},
	}
}
