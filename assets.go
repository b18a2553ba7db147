package folio

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
)

// assetFS serves the bound asset filesystem to Echo's static handler, so
// static files obey the same root as the gallery: a symlink that points
// outside the asset root resolves to a missing file.
//
// go-billy's helper/iofs adapter is not used because its files cannot seek,
// which http.ServeContent requires.
type assetFS struct {
	fs billy.Filesystem
}

func (a assetFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return assetDir{info: info}, nil
	}
	f, err := a.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return assetFile{File: f, info: info}, nil
}

func (a assetFS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	return a.fs.Stat(name)
}

type assetFile struct {
	billy.File
	info fs.FileInfo
}

func (f assetFile) Stat() (fs.FileInfo, error) { return f.info, nil }

// assetDir only reports its FileInfo; directory listings are never served.
type assetDir struct {
	info fs.FileInfo
}

func (d assetDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d assetDir) Read([]byte) (int, error)    { return 0, io.EOF }
func (d assetDir) Close() error                { return nil }
