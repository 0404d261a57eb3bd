package scanner

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/pkg/utils"
)

// FileRecord is an immutable snapshot of one file's metadata taken at scan
// time. Later actions (move/delete) invalidate it; the pipeline only carries
// the path forward, it never mutates a record.
type FileRecord struct {
	Path       string    `json:"path" yaml:"path"`
	Name       string    `json:"name" yaml:"name"`
	Ext        string    `json:"extension" yaml:"extension"` // lowercase, includes the dot
	Size       int64     `json:"size" yaml:"size"`
	ModTime    time.Time `json:"modified" yaml:"modified"`
	CreateTime time.Time `json:"created" yaml:"created"`
	IsRegular  bool      `json:"is_regular" yaml:"is_regular"`
}

// NewFileRecord builds a record from a path and its stat result
func NewFileRecord(path string, info fs.FileInfo) FileRecord {
	return FileRecord{
		Path:       path,
		Name:       filepath.Base(path),
		Ext:        strings.ToLower(filepath.Ext(path)),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		CreateTime: createTime(info),
		IsRegular:  info.Mode().IsRegular(),
	}
}

// SizeKB returns the file size in kilobytes
func (r FileRecord) SizeKB() float64 {
	return float64(r.Size) / float64(utils.KB)
}

// SizeMB returns the file size in megabytes rounded to two decimals
func (r FileRecord) SizeMB() float64 {
	return utils.MegabytesOf(r.Size)
}

// ScanFunc receives progress after each file processed, included or not.
// total comes from a pre-pass over the same roots.
type ScanFunc func(current, total int, path string)

// Statistics summarizes a completed scan
type Statistics struct {
	TotalFiles  int            `json:"total_files" yaml:"total_files"`
	TotalSizeMB float64        `json:"total_size_mb" yaml:"total_size_mb"`
	FileTypes   map[string]int `json:"file_types" yaml:"file_types"`
}

// Scanner enumerates candidate files under the configured roots
type Scanner struct {
	cfg    *config.ScanConfig
	logger *log.Logger
	files  []FileRecord
}

// New creates a new Scanner
func New(cfg *config.ScanConfig, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Scanner{
		cfg:    cfg,
		logger: logger,
	}
}

// Scan walks each configured root and returns records for every regular
// file that passes the filters. Missing roots and unreadable entries are
// logged and skipped; a single bad entry never aborts the scan.
func (s *Scanner) Scan(cb ScanFunc) []FileRecord {
	s.files = nil

	// Pre-pass: count entries so the callback can report a stable total.
	// Must apply the same existence checks as the real pass or the count
	// drifts.
	total := 0
	s.eachRoot(func(root string) {
		s.walk(root, func(string) {
			total++
		})
	})

	current := 0
	s.eachRoot(func(root string) {
		s.walk(root, func(path string) {
			current++

			info, err := os.Stat(path)
			if err != nil {
				s.logger.Printf("[WARN] cannot access %s: %v", path, err)
				if cb != nil {
					cb(current, total, path)
				}
				return
			}

			record := NewFileRecord(path, info)
			if s.include(record) {
				s.files = append(s.files, record)
			}

			if cb != nil {
				cb(current, total, path)
			}
		})
	})

	return s.files
}

// eachRoot invokes fn for every configured root that exists
func (s *Scanner) eachRoot(fn func(root string)) {
	for _, root := range s.cfg.Roots {
		if _, err := os.Stat(root); err != nil {
			s.logger.Printf("[WARN] scan root missing, skipping: %s", root)
			continue
		}
		fn(root)
	}
}

// walk yields the path of every file entry under root. The default is one
// level deep; with Recursive enabled it descends, skipping ignored folders.
func (s *Scanner) walk(root string, fn func(path string)) {
	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Printf("[WARN] cannot list %s: %v", root, err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		if entry.IsDir() {
			if s.cfg.Recursive && !s.ignoredFolder(entry.Name()) {
				s.walk(path, fn)
			}
			continue
		}

		fn(path)
	}
}

// include applies the filter predicate to a candidate record
func (s *Scanner) include(r FileRecord) bool {
	if !r.IsRegular {
		return false
	}

	for _, ext := range s.cfg.IgnoreExtensions {
		if strings.EqualFold(ext, r.Ext) {
			return false
		}
	}

	if s.cfg.MinFileSizeMB > 0 && r.SizeMB() < s.cfg.MinFileSizeMB {
		return false
	}

	return true
}

// ignoredFolder reports whether a directory name is on the ignore list
func (s *Scanner) ignoredFolder(name string) bool {
	for _, folder := range s.cfg.IgnoreFolders {
		if name == folder {
			return true
		}
	}
	return false
}

// GetStatistics summarizes the last scan
func (s *Scanner) GetStatistics() Statistics {
	stats := Statistics{
		FileTypes: make(map[string]int),
	}

	var totalSize int64
	for _, f := range s.files {
		ext := f.Ext
		if ext == "" {
			ext = "no_extension"
		}
		stats.FileTypes[ext]++
		totalSize += f.Size
	}

	stats.TotalFiles = len(s.files)
	stats.TotalSizeMB = utils.MegabytesOf(totalSize)
	return stats
}
