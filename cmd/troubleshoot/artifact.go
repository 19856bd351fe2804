package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"net-troubleshooter/internal/domain"
)

var artifactFlags struct {
	mode string
	out  string
}

var reportCmd = &cobra.Command{
	Use:   "report <target>",
	Short: "Download the markdown report for a target",
	Long:  "Report fetches a fresh diagnosis report for the target without going\nthrough a full diagnose run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArtifact(cmd, args[0], domain.ArtifactReport)
	},
}

var fixScriptCmd = &cobra.Command{
	Use:   "fix-script <target>",
	Short: "Download the fix script for a target",
	Long:  "Fix-script fetches a fresh remediation script for the target. Use\n--out - to pipe the script to stdout.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArtifact(cmd, args[0], domain.ArtifactFixScript)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{reportCmd, fixScriptCmd} {
		f := cmd.Flags()
		f.StringVar(&artifactFlags.mode, "mode", "", "diagnosis mode (beginner|expert, default from settings)")
		f.StringVar(&artifactFlags.out, "out", "", "output path, or - for stdout (default: artifact filename)")
	}
}

func runArtifact(cmd *cobra.Command, target string, kind domain.ArtifactKind) error {
	client, settings, err := newClient()
	if err != nil {
		return err
	}
	mode, err := resolveMode(artifactFlags.mode, settings)
	if err != nil {
		return err
	}

	req := domain.Request{Target: target, Mode: mode}
	artifact, err := client.FetchArtifact(cmd.Context(), req, kind)
	if err != nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("fetch %s for %s: %w", kind, target, err)
	}

	if artifactFlags.out == "-" {
		_, err := cmd.OutOrStdout().Write(artifact.Data)
		return err
	}

	path := artifactFlags.out
	if path == "" {
		path = artifact.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	perm := os.FileMode(0o644)
	if kind == domain.ArtifactFixScript {
		perm = 0o755
	}
	if err := os.WriteFile(path, artifact.Data, perm); err != nil {
		return fmt.Errorf("save %s: %w", artifact.Filename, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
	return nil
}
