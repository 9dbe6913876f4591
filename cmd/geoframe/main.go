// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command geoframe vectorizes diagram images and solves geometry specs.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	// A .env file is optional; GEOFRAME_* variables may come from it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:           "geoframe",
		Short:         "Diagram vectorizer and geometry spec solver",
		Long:          "geoframe turns problem diagrams into vector anchors and solves spec.json documents into drawing-frame coordinates.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().String("problem-dir", ".", "Problem directory holding the image and spec.json")
	rootCmd.PersistentFlags().String("spec-file", "spec.json", "Spec document name inside the problem directory")
	rootCmd.PersistentFlags().String("frame", "14x8", "Drawing frame size WxH in scene units")
	rootCmd.PersistentFlags().Int("dpi", 300, "Recorded image resolution")
	rootCmd.PersistentFlags().Float64("threshold", 0.60, "Binarization threshold in (0, 1]")
	rootCmd.PersistentFlags().String("tracer", "potrace", "Tracer executable")
	rootCmd.PersistentFlags().Duration("trace-timeout", 0, "Per-trace timeout (default 60s)")
	rootCmd.PersistentFlags().Bool("no-axis-hints", false, "Skip OpenCV axis detection")
	rootCmd.PersistentFlags().Int("max-retries", 3, "Maximum repair attempts")
	rootCmd.PersistentFlags().Bool("no-git", false, "Do not commit spec revisions")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity")

	// Bind flags to viper.
	for _, name := range []string{
		"problem-dir", "spec-file", "frame", "dpi", "threshold", "tracer",
		"trace-timeout", "no-axis-hints", "max-retries", "no-git", "verbose",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Env vars: GEOFRAME_PROBLEM_DIR, GEOFRAME_TRACER, etc.
	viper.SetEnvPrefix("GEOFRAME")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".geoframe")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newVectorizeCmd())
	rootCmd.AddCommand(newEnsureCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr; each -v raises the verbosity by one.
func newLogger(verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print geoframe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("geoframe %s\n", version)
		},
	}
}
