//go:build windows

package tailer

import "os"

// fileIdentity on Windows records only the modification time, since inode
// numbers aren't exposed the same way, and hasShrunkOrReplaced does not
// compare it: a rotation is detected only when the file on disk is smaller
// than the current read position.
type fileIdentity struct {
	modTimeUnixNano int64
}

func identify(f *os.File) (fileIdentity, error) {
	info, err := f.Stat()
	if err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{modTimeUnixNano: info.ModTime().UnixNano()}, nil
}

func hasShrunkOrReplaced(path string, f *os.File, ino fileIdentity) (bool, error) {
	diskInfo, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	pos, err := f.Seek(0, os.SEEK_CUR)
	if err != nil {
		return false, err
	}
	return diskInfo.Size() < pos, nil
}
