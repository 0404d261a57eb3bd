//go:build !linux && !darwin

package scanner

import (
	"io/fs"
	"time"
)

func createTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
