// Copyright 2016-2020 Thijs van Dijk. All rights reserved.
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

/*
	Package ziptraverser provides a transparent way of opening files by path
	name, where some of the directory names are actually zip archive files.

	Usage:

	Create an empty ziptraverser. Afterwards, ask it to open a file.
		zm := ziptraverser.New()
		defer zm.Close()
		f, err := zm.Get("path/to/settings.zip/.idea/workspace.xml")
		if err != nil {
			panic(err)
		}
		io.Copy(os.Stdout, f)

	Or list the files of one type contained in an archive:
		names, err := zm.List("path/to/settings.zip", ".xml")

	A ZipTraverser will cache open file pointers to zip archives it's
	encountered. If you call `Get`, ziptraverser expects you to call Close()
	on the resulting ReadCloser before calling `Get` again. This library is
	not thread-safe in any way.
*/
package ziptraverser

import (
	"io"
)

// DefaultCacheSize is the number of zip archives kept open by New()
const DefaultCacheSize = 4

type ZipTraverser interface {
	// Exists checks if a file exists, either on disk or inside an archive
	Exists(filename string) bool

	// Get opens a file, either on disk or inside an archive
	Get(filename string) (io.ReadCloser, error)

	// IsArchive reports whether filename is a zip archive on disk
	IsArchive(filename string) bool

	// List returns the paths of all files inside an archive whose name ends
	// in ext. The returned paths can be passed to Get.
	List(archive, ext string) ([]string, error)

	Close()
}

func New() ZipTraverser {
	return newMap(DefaultCacheSize)
}
