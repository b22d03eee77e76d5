// Copyright 2016 Thijs van Dijk. All rights reserved.
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package ziptraverser

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type zipMap struct {
	zipLRU  []mapElement
	maxSize int
}

type mapElement struct {
	Filename string
	Zip      *zip.ReadCloser
}

func newMap(size int) *zipMap {
	if size < 1 {
		size = 1
	}
	rv := &zipMap{
		// A list of open archives. The least recently used zip reader is at
		// index 0 of this list; the most recent one is at the end.
		zipLRU: make([]mapElement, 0, size),
		// If len(zipLRU) is equal to maxSize and a new archive is opened, the
		// zip reader at index 0 is closed
		maxSize: size,
	}

	return rv
}

func (z *zipMap) getZipHandle(zipfile string) (*zip.ReadCloser, error) {
	var read mapElement
	var i int
	ok := false
	for i, read = range z.zipLRU {
		if read.Filename == zipfile {
			ok = true
			break
		}
	}

	if ok {
		z.zipLRU = append(z.zipLRU[:i], z.zipLRU[i+1:]...)
	} else {
		f, err := zip.OpenReader(zipfile)
		if err != nil {
			return nil, err
		}

		if len(z.zipLRU) == z.maxSize {
			z.zipLRU[0].Zip.Close()
			copy(z.zipLRU, z.zipLRU[1:])
			z.zipLRU = z.zipLRU[:z.maxSize-1]
		}
		read = mapElement{zipfile, f}
	}

	z.zipLRU = append(z.zipLRU, read)

	return read.Zip, nil
}

func (z *zipMap) Exists(filename string) bool {
	f, err := z.Get(filename)
	if err == nil {
		f.Close()
		return true
	}
	return false
}

func (z *zipMap) IsArchive(filename string) bool {
	if !isZipName(filename) {
		return false
	}
	fi, err := os.Stat(filename)
	return err == nil && fi.Mode().IsRegular()
}

func (z *zipMap) Get(filename string) (io.ReadCloser, error) {
	// Try opening the file itself, maybe that works...
	fi, err := os.Stat(filename)
	if err == nil && fi.Mode().IsRegular() {
		return os.Open(filename)
	}

	zipfile, localfile, ok := splitArchivePath(filename)
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "file '%s' does not exist", filename)
	}

	read, err := z.getZipHandle(zipfile)
	if err != nil {
		return nil, errors.Wrapf(os.ErrNotExist, "cannot open archive '%s': %s", zipfile, err)
	}

	for _, zfp := range read.File {
		if zfp.Name == localfile {
			return zfp.Open()
		}
	}

	return nil, errors.Wrapf(os.ErrNotExist, "file '%s' does not exist in '%s'", localfile, zipfile)
}

func (z *zipMap) List(archive, ext string) ([]string, error) {
	read, err := z.getZipHandle(archive)
	if err != nil {
		return nil, errors.WithMessagef(err, "error listing '%s'", archive)
	}

	ext = strings.ToLower(ext)
	var rv []string
	for _, zfp := range read.File {
		if zfp.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(zfp.Name), ext) {
			rv = append(rv, archive+"/"+zfp.Name)
		}
	}

	return rv, nil
}

func (z *zipMap) Close() {
	for _, el := range z.zipLRU {
		el.Zip.Close()
	}
	z.zipLRU = z.zipLRU[:0]
}

// splitArchivePath finds the first path component that names a zip file on
// disk, and returns the archive path along with the path inside it.
func splitArchivePath(filename string) (zipfile, localfile string, ok bool) {
	filename = filepath.ToSlash(filename)

	abs := ""
	elems := strings.Split(filename, "/")
	if elems[0] == "" {
		elems = elems[1:]
		abs = "/"
	}

	for i, elem := range elems {
		if !isZipName(elem) || i == len(elems)-1 {
			continue
		}
		zipfile = abs + path.Join(elems[0:i+1]...)
		fi, err := os.Stat(filepath.FromSlash(zipfile))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		return filepath.FromSlash(zipfile), path.Join(elems[i+1:]...), true
	}

	return "", "", false
}

func isZipName(name string) bool {
	return len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".zip")
}
