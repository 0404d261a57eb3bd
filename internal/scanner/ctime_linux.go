//go:build linux

package scanner

import (
	"io/fs"
	"syscall"
	"time"
)

// createTime extracts the inode change time, the closest thing Linux
// exposes to a creation timestamp. Falls back to the modification time.
func createTime(info fs.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	}
	return info.ModTime()
}
