package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"net-troubleshooter/internal/domain"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var reportDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Markdown report",
		Pattern:     "*.md",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

var fixScriptDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Shell script",
		Pattern:     "*.sh",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// SaveReport fetches the report for the last completed run and writes it to a
// user-chosen path. Returns the saved path, or "" when the dialog is dismissed.
func (a *App) SaveReport() (string, error) {
	return a.saveArtifact(domain.ArtifactReport, reportDialogFilter, 0o644)
}

// SaveFixScript fetches the fix script for the last completed run and writes
// it, executable, to a user-chosen path. Returns the saved path, or "" when
// the dialog is dismissed.
func (a *App) SaveFixScript() (string, error) {
	return a.saveArtifact(domain.ArtifactFixScript, fixScriptDialogFilter, 0o755)
}

// saveArtifact gates the fetch on run state, prompts for a destination, and
// writes the payload.
func (a *App) saveArtifact(kind domain.ArtifactKind, filters []wailsruntime.FileFilter, perm os.FileMode) (string, error) {
	artifact, err := a.Session.Artifact(context.Background(), kind)
	if err != nil {
		return "", err
	}

	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:           "Save " + artifact.Filename,
		DefaultFilename: artifact.Filename,
		Filters:         filters,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}

	if err := writeFileAtomic(path, artifact.Data, perm); err != nil {
		return "", fmt.Errorf("write %s: %w", artifact.Filename, err)
	}

	logrus.Infof("saved %s to %s", artifact.Filename, path)
	return path, nil
}

// writeFileAtomic writes through a temp file and rename so a failed write
// never truncates an existing file at the destination.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".troubleshooter-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
