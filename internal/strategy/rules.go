package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/pkg/utils"
)

func init() {
	Register("rules", func(cfg *config.StrategyConfig) Strategy {
		return NewRules(cfg.Rules)
	})
}

// Category labels used by the rule engine. These double as the grouping
// keys in the category index and as move-destination folder names.
const (
	CategoryTemp      = "临时文件"
	CategoryDocument  = "文档"
	CategoryImage     = "图片"
	CategoryVideo     = "视频"
	CategoryAudio     = "音频"
	CategoryArchive   = "压缩包"
	CategoryInstaller = "安装包"
	CategoryOther     = "其他"
)

// installerDays is how long an installer sits around before it is assumed
// to have been installed already
const installerDays = 30

// largeVideoBytes separates "large" videos, which get a higher confidence
const largeVideoBytes = 100 * utils.MB

// extension sets per bucket; a file's bucket is the first set that
// contains its extension, checked in the order of rules in classify
var (
	tempExtensions      = extSet(".tmp", ".temp", ".cache", ".log", ".bak", ".old")
	docExtensions       = extSet(".doc", ".docx", ".pdf", ".txt", ".md", ".xlsx", ".xls", ".ppt", ".pptx")
	imageExtensions     = extSet(".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico")
	videoExtensions     = extSet(".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm")
	audioExtensions     = extSet(".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma")
	archiveExtensions   = extSet(".zip", ".rar", ".7z", ".tar", ".gz", ".bz2")
	installerExtensions = extSet(".exe", ".msi", ".dmg", ".pkg", ".deb", ".rpm")
)

func extSet(exts ...string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[ext] = true
	}
	return set
}

// Rules is the deterministic, offline classification strategy. It never
// fails and needs no credentials, which makes it the fallback of choice.
type Rules struct {
	oldFileDays  int
	tempFileDays int
	now          func() time.Time
}

// NewRules creates the rule engine with the configured age thresholds
func NewRules(cfg config.RulesConfig) *Rules {
	oldDays := cfg.OldFileDays
	if oldDays <= 0 {
		oldDays = 90
	}
	tempDays := cfg.TempFileDays
	if tempDays <= 0 {
		tempDays = 7
	}

	return &Rules{
		oldFileDays:  oldDays,
		tempFileDays: tempDays,
		now:          time.Now,
	}
}

// Name identifies the strategy for logging
func (r *Rules) Name() string {
	return "rules"
}

// Available always reports true; the rule engine has no dependencies
func (r *Rules) Available() bool {
	return true
}

// Analyze classifies every file in the batch. Each file yields exactly one
// suggestion and lands in exactly one category bucket.
func (r *Rules) Analyze(ctx context.Context, files []scanner.FileRecord, existingCategories []string) (*Result, error) {
	result := EmptyResult()

	for _, file := range files {
		suggestion, category := r.classify(file)
		result.Suggestions = append(result.Suggestions, suggestion)
		result.Categories[category] = append(result.Categories[category], file.Name)
	}

	return result, nil
}

// ageDays computes the file's age in whole days. A zero or future
// modification time yields 0 so broken timestamps are never flagged old.
func (r *Rules) ageDays(file scanner.FileRecord) int {
	if file.ModTime.IsZero() {
		return 0
	}
	days := int(r.now().Sub(file.ModTime).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// classify applies the bucket decision table to one file. Bucket priority
// is fixed: temp > document > image > video > audio > archive > installer,
// with everything else falling through to the "other" bucket.
func (r *Rules) classify(file scanner.FileRecord) (Suggestion, string) {
	age := r.ageDays(file)

	suggest := func(category string, action Action, reason string, confidence float64) (Suggestion, string) {
		return Suggestion{
			FilePath:   file.Path,
			Action:     action,
			Reason:     reason,
			Category:   category,
			Confidence: confidence,
		}, category
	}

	switch {
	case tempExtensions[file.Ext]:
		if age > r.tempFileDays {
			return suggest(CategoryTemp, ActionDelete, fmt.Sprintf("临时文件，已%d天未修改", age), 0.9)
		}
		return suggest(CategoryTemp, ActionKeep, "临时文件，但最近修改过", 0.7)

	case docExtensions[file.Ext]:
		if age > r.oldFileDays {
			return suggest(CategoryDocument, ActionMove, fmt.Sprintf("文档，已%d天未修改，建议归档", age), 0.8)
		}
		return suggest(CategoryDocument, ActionKeep, "最近使用的文档", 0.9)

	case imageExtensions[file.Ext]:
		return suggest(CategoryImage, ActionMove, "图片文件，建议移动到图片文件夹", 0.85)

	case videoExtensions[file.Ext]:
		if file.Size > largeVideoBytes {
			return suggest(CategoryVideo, ActionMove, fmt.Sprintf("大视频文件(%.1fMB)，建议移动到专门目录", file.SizeMB()), 0.9)
		}
		return suggest(CategoryVideo, ActionMove, "视频文件，建议整理", 0.8)

	case audioExtensions[file.Ext]:
		return suggest(CategoryAudio, ActionMove, "音频文件，建议移动到音乐文件夹", 0.85)

	case archiveExtensions[file.Ext]:
		if age > r.oldFileDays {
			return suggest(CategoryArchive, ActionDelete, fmt.Sprintf("旧压缩包，已%d天未使用", age), 0.7)
		}
		return suggest(CategoryArchive, ActionKeep, "最近的压缩包", 0.8)

	case installerExtensions[file.Ext]:
		if age > installerDays {
			return suggest(CategoryInstaller, ActionDelete, fmt.Sprintf("安装包，已%d天未使用，可能已安装", age), 0.75)
		}
		return suggest(CategoryInstaller, ActionKeep, "最近的安装包", 0.8)

	default:
		if age > r.oldFileDays*2 {
			return suggest(CategoryOther, ActionMove, fmt.Sprintf("长时间未使用(%d天)，建议归档", age), 0.6)
		}
		return suggest(CategoryOther, ActionKeep, "普通文件", 0.7)
	}
}
