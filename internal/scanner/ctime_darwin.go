//go:build darwin

package scanner

import (
	"io/fs"
	"syscall"
	"time"
)

// createTime extracts the file's birth time from the stat result.
// Falls back to the modification time.
func createTime(info fs.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	}
	return info.ModTime()
}
