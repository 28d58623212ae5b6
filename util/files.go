package util

import (
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// ListFiles lists non-dir files or first level files under the directories in the given path pattern
func ListFiles(directoryOrFilePattern string) ([]string, error) {
	inputList, gerr := filepath.Glob(directoryOrFilePattern)
	if gerr != nil {
		return nil, gerr
	}
	pathList := make([]string, 0, len(inputList)*2+10)
	for _, input := range inputList {
		stat, serr := os.Stat(input)
		if serr != nil {
			return nil, serr
		}
		if stat.IsDir() {
			fileList, rerr := os.ReadDir(input)
			if rerr != nil {
				return nil, rerr
			}
			for _, file := range fileList {
				pathList = append(pathList, filepath.Join(input, file.Name()))
			}
		} else {
			pathList = append(pathList, input)
		}
	}
	sort.Strings(pathList)
	return pathList, nil
}

// WriteFileAt writes to a new file in given directory
func WriteFileAt(dir *os.File, filename string, data []byte, perm os.FileMode) error {
	fd, oerr := unix.Openat(int(dir.Fd()), filename, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, uint32(perm))
	if oerr != nil {
		return oerr
	}
	for len(data) > 0 {
		n, werr := unix.Write(fd, data)
		if werr != nil {
			unix.Close(fd)
			return werr
		}
		data = data[n:]
	}
	return unix.Close(fd)
}

// RenameFileAt renames a file inside the given directory, replacing any existing target
func RenameFileAt(dir *os.File, oldName string, newName string) error {
	dirFd := int(dir.Fd())
	return unix.Renameat(dirFd, oldName, dirFd, newName)
}
