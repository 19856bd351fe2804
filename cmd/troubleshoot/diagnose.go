package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"net-troubleshooter/internal/domain"
	"net-troubleshooter/internal/session"
)

var diagnoseFlags struct {
	mode          string
	jobs          int
	jsonOut       bool
	saveReport    bool
	saveFixScript bool
	outDir        string
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <target> [target...]",
	Short: "Run diagnostics against one or more targets",
	Long: "Diagnose asks the backend to run connectivity checks for each target and\n" +
		"renders the results. Targets are checked concurrently. The command exits\n" +
		"non-zero when any run fails or any check reports FAIL.",
	Args: cobra.MinimumNArgs(1),
	RunE: runDiagnose,
}

func init() {
	f := diagnoseCmd.Flags()
	f.StringVar(&diagnoseFlags.mode, "mode", "", "diagnosis mode (beginner|expert, default from settings)")
	f.IntVar(&diagnoseFlags.jobs, "jobs", 4, "max concurrent targets")
	f.BoolVar(&diagnoseFlags.jsonOut, "json", false, "emit results as JSON keyed by target")
	f.BoolVar(&diagnoseFlags.saveReport, "save-report", false, "download the markdown report for each completed target")
	f.BoolVar(&diagnoseFlags.saveFixScript, "save-fix-script", false, "download the fix script for each completed target")
	f.StringVar(&diagnoseFlags.outDir, "out-dir", ".", "directory for downloaded artifacts")
}

// targetOutcome pairs a target with its final session state.
type targetOutcome struct {
	target string
	state  session.State
	saved  []string
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	client, settings, err := newClient()
	if err != nil {
		return err
	}
	mode, err := resolveMode(diagnoseFlags.mode, settings)
	if err != nil {
		return err
	}

	jobs := diagnoseFlags.jobs
	if jobs < 1 {
		jobs = 1
	}

	outcomes := make([]targetOutcome, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for i, target := range args {
		i, target := i, target
		g.Go(func() error {
			sess := session.New(client, nil)
			handle, err := sess.Start(domain.Request{Target: target, Mode: mode})
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}

			select {
			case <-handle.Done:
			case <-ctx.Done():
				sess.Cancel()
				return ctx.Err()
			}

			outcome := targetOutcome{target: target, state: sess.State()}
			if outcome.state.Run.Status == domain.RunStatusSucceeded {
				saved, err := downloadArtifacts(ctx, sess, target)
				if err != nil {
					return err
				}
				outcome.saved = saved
			}

			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cmd.SilenceUsage = true
		return err
	}

	out := cmd.OutOrStdout()
	if diagnoseFlags.jsonOut {
		if err := renderJSON(out, outcomes); err != nil {
			return err
		}
	} else {
		for i, outcome := range outcomes {
			if i > 0 {
				fmt.Fprintln(out)
			}
			renderOutcome(out, outcome)
		}
	}

	failedRuns, failedChecks := 0, 0
	for _, outcome := range outcomes {
		if outcome.state.Run.Status == domain.RunStatusFailed {
			failedRuns++
		}
		failedChecks += outcome.state.Summary.Failed
	}
	if failedRuns > 0 || failedChecks > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d failed runs, %d failing checks", failedRuns, failedChecks)
	}
	return nil
}

// downloadArtifacts fetches the artifacts selected by flags for one completed
// target and writes them under the output directory.
func downloadArtifacts(ctx context.Context, sess *session.Session, target string) ([]string, error) {
	var kinds []domain.ArtifactKind
	if diagnoseFlags.saveReport {
		kinds = append(kinds, domain.ArtifactReport)
	}
	if diagnoseFlags.saveFixScript {
		kinds = append(kinds, domain.ArtifactFixScript)
	}

	var saved []string
	for _, kind := range kinds {
		artifact, err := sess.Artifact(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", target, err)
		}
		artifact.Filename = targetFilename(target, artifact.Filename)

		path, err := writeArtifact(diagnoseFlags.outDir, artifact)
		if err != nil {
			return nil, fmt.Errorf("%s: save %s: %w", target, artifact.Filename, err)
		}
		saved = append(saved, path)
	}
	return saved, nil
}

// targetFilename prefixes an artifact filename with a filesystem-safe form of
// the target so concurrent downloads never collide.
func targetFilename(target, filename string) string {
	safe := make([]rune, 0, len(target))
	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	return string(safe) + "_" + filename
}

// writeArtifact writes artifact data under dir, executable for fix scripts.
func writeArtifact(dir string, artifact domain.Artifact) (string, error) {
	perm := os.FileMode(0o644)
	if artifact.Kind == domain.ArtifactFixScript {
		perm = 0o755
	}

	path := filepath.Join(dir, artifact.Filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, artifact.Data, perm); err != nil {
		return "", err
	}
	return path, nil
}
