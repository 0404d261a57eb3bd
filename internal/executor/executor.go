// Package executor applies accepted triage suggestions to the real
// filesystem: delete with optional backup, move into category folders,
// keep as a no-op. Outcomes accumulate in a per-run ledger.
package executor

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/strategy"
	"github.com/fenilsonani/desk-triage/pkg/utils"
)

// movePrefix names the sibling folder files are sorted into, suffixed
// with the suggestion's category label
const movePrefix = "整理_"

// ProgressFunc is called before each operation. index is 1-based over the
// suggestion list.
type ProgressFunc func(index, total int, action strategy.Action, path string)

// OperationRecord is one successful ledger entry
type OperationRecord struct {
	Path    string          `json:"path" yaml:"path"`
	Action  strategy.Action `json:"action" yaml:"action"`
	NewPath string          `json:"new_path,omitempty" yaml:"new_path,omitempty"`
	Backup  string          `json:"backup,omitempty" yaml:"backup,omitempty"`
	FreedMB float64         `json:"freed_mb,omitempty" yaml:"freed_mb,omitempty"`
}

// FailureRecord is one failed ledger entry
type FailureRecord struct {
	Path   string          `json:"path" yaml:"path"`
	Action strategy.Action `json:"action" yaml:"action"`
	Error  string          `json:"error" yaml:"error"`
}

// Ledger accumulates the outcome of one execution run, one entry per
// suggestion, in suggestion order
type Ledger struct {
	Successes    []OperationRecord `json:"successes" yaml:"successes"`
	Failures     []FailureRecord   `json:"failures" yaml:"failures"`
	Skipped      []string          `json:"skipped" yaml:"skipped"`
	DeletedCount int               `json:"deleted_count" yaml:"deleted_count"`
	MovedCount   int               `json:"moved_count" yaml:"moved_count"`
	KeptCount    int               `json:"kept_count" yaml:"kept_count"`
	FreedSpaceMB float64           `json:"freed_space_mb" yaml:"freed_space_mb"`
}

// Executor performs the filesystem side of a triage run
type Executor struct {
	backupEnabled bool
	backupRoot    string
	dryRun        bool
	logger        *log.Logger
	now           func() time.Time
}

// New creates an executor from the resolved configuration
func New(cfg *config.Config, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Executor{
		backupEnabled: cfg.Backup.Enabled,
		backupRoot:    cfg.Backup.Folder,
		dryRun:        cfg.DryRun,
		logger:        logger,
		now:           time.Now,
	}
}

// Execute applies every suggestion in order. A failing item is recorded in
// the ledger and never aborts the remaining items.
func (e *Executor) Execute(suggestions []strategy.Suggestion, cb ProgressFunc) *Ledger {
	ledger := &Ledger{
		Successes: []OperationRecord{},
		Failures:  []FailureRecord{},
		Skipped:   []string{},
	}

	total := len(suggestions)
	for i, s := range suggestions {
		if cb != nil {
			cb(i+1, total, s.Action, s.FilePath)
		}

		switch strategy.NormalizeAction(string(s.Action)) {
		case strategy.ActionDelete:
			e.delete(s, ledger)
		case strategy.ActionMove:
			e.move(s, ledger)
		default:
			ledger.Skipped = append(ledger.Skipped, s.FilePath)
			ledger.KeptCount++
		}
	}

	return ledger
}

func (e *Executor) fail(ledger *Ledger, s strategy.Suggestion, err error) {
	opErr := Categorize(s.FilePath, err)
	e.logger.Printf("%s %s failed: %v", s.Action, s.FilePath, opErr)
	ledger.Failures = append(ledger.Failures, FailureRecord{
		Path:   s.FilePath,
		Action: s.Action,
		Error:  opErr.Error(),
	})
}

// delete removes the file, copying it into the dated backup folder first
// when backups are enabled
func (e *Executor) delete(s strategy.Suggestion, ledger *Ledger) {
	info, err := os.Stat(s.FilePath)
	if err != nil {
		e.fail(ledger, s, err)
		return
	}

	record := OperationRecord{
		Path:    s.FilePath,
		Action:  strategy.ActionDelete,
		FreedMB: utils.MegabytesOf(info.Size()),
	}

	if e.dryRun {
		e.logger.Printf("dry run: would delete %s", s.FilePath)
		ledger.Successes = append(ledger.Successes, record)
		ledger.DeletedCount++
		ledger.FreedSpaceMB += record.FreedMB
		return
	}

	if e.backupEnabled && info.Mode().IsRegular() {
		backupPath, err := e.backup(s.FilePath, info)
		if err != nil {
			e.fail(ledger, s, fmt.Errorf("backup: %w", err))
			return
		}
		record.Backup = backupPath
	}

	if info.IsDir() {
		err = os.RemoveAll(s.FilePath)
	} else {
		err = os.Remove(s.FilePath)
	}
	if err != nil {
		e.fail(ledger, s, err)
		return
	}

	ledger.Successes = append(ledger.Successes, record)
	ledger.DeletedCount++
	ledger.FreedSpaceMB += record.FreedMB
}

// backup copies the file into <backupRoot>/<YYYYMMDD>/, adding an _HHMMSS
// suffix before the extension when the name is already taken
func (e *Executor) backup(path string, info os.FileInfo) (string, error) {
	dir := filepath.Join(e.backupRoot, e.now().Format("20060102"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		dest = withSuffix(dest, e.now().Format("_150405"))
	}

	if err := copyFile(path, dest, info); err != nil {
		return "", err
	}
	return dest, nil
}

// move relocates the file into the 整理_<category> folder next to it,
// renaming with a timestamp suffix when the destination name is taken
func (e *Executor) move(s strategy.Suggestion, ledger *Ledger) {
	info, err := os.Stat(s.FilePath)
	if err != nil {
		e.fail(ledger, s, err)
		return
	}

	category := s.Category
	if category == "" {
		category = "其他"
	}
	targetDir := filepath.Join(filepath.Dir(s.FilePath), movePrefix+category)

	dest := filepath.Join(targetDir, filepath.Base(s.FilePath))
	if _, err := os.Stat(dest); err == nil {
		dest = withSuffix(dest, e.now().Format("_20060102_150405"))
	}

	if e.dryRun {
		e.logger.Printf("dry run: would move %s -> %s", s.FilePath, dest)
		ledger.Successes = append(ledger.Successes, OperationRecord{
			Path:    s.FilePath,
			Action:  strategy.ActionMove,
			NewPath: dest,
		})
		ledger.MovedCount++
		return
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		e.fail(ledger, s, err)
		return
	}

	if err := rename(s.FilePath, dest, info); err != nil {
		e.fail(ledger, s, err)
		return
	}

	ledger.Successes = append(ledger.Successes, OperationRecord{
		Path:    s.FilePath,
		Action:  strategy.ActionMove,
		NewPath: dest,
	})
	ledger.MovedCount++
}

// rename moves src to dest, falling back to copy-and-remove for regular
// files when the rename crosses filesystems
func rename(src, dest string, info os.FileInfo) error {
	err := os.Rename(src, dest)
	if err == nil || !info.Mode().IsRegular() {
		return err
	}

	if _, ok := err.(*os.LinkError); !ok {
		return err
	}

	if cerr := copyFile(src, dest, info); cerr != nil {
		return err
	}
	return os.Remove(src)
}

// withSuffix inserts suffix between the file name and its extension
func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// copyFile copies src to dest preserving mode and modification time
func copyFile(src, dest string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
