//go:build !windows

package tailer

import (
	"os"
	"syscall"
)

// fileIdentity distinguishes "the same inode, grown" from "a different file
// now sits at this path", which a name or size comparison alone cannot do.
type fileIdentity struct {
	dev uint64
	ino uint64
}

func identify(f *os.File) (fileIdentity, error) {
	info, err := f.Stat()
	if err != nil {
		return fileIdentity{}, err
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileIdentity{}, nil
	}
	return fileIdentity{dev: uint64(sys.Dev), ino: sys.Ino}, nil
}

// hasShrunkOrReplaced reports whether the file at path is no longer the same
// file as f (replaced, e.g. log rotation) or has shrunk below f's current
// read position (truncated in place).
func hasShrunkOrReplaced(path string, f *os.File, ino fileIdentity) (bool, error) {
	diskInfo, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if sys, ok := diskInfo.Sys().(*syscall.Stat_t); ok {
		if uint64(sys.Dev) != ino.dev || sys.Ino != ino.ino {
			return true, nil
		}
	}

	pos, err := f.Seek(0, os.SEEK_CUR)
	if err != nil {
		return false, err
	}
	return diskInfo.Size() < pos, nil
}
