package migrator

import (
	"io/fs"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/consts"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
)

var (
	// ErrNotADirectory is returned by Open when the migration path exists but
	// is not a directory.
	ErrNotADirectory = errors.New("migration path is not a directory")

	// ErrNoSumFile is returned by Verify when the directory has no sum file.
	ErrNoSumFile = errors.New("sum file not found")
)

// Dir is a loaded migration directory.
//
// Only the top level of the directory is considered. Files ending in .sql are
// parsed as tagged SQL files and ordered by file name, which is the order in
// which they are applied. Subdirectories and other files are ignored.
type Dir struct {
	// Files holds the parsed SQL files in lexical order of their file names.
	Files []*sqlfile.File

	fs fs.FS
}

// Open loads the migration directory at path.
//
// Example:
//
//	dir, err := migrator.Open("./migrations")
//	if err != nil {
//		return err
//	}
//
//	for _, f := range dir.Tagged("up") {
//		fmt.Println(f.Name)
//	}
func Open(dirPath string) (*Dir, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read migration directory: %s", dirPath)
	}

	if !info.IsDir() {
		return nil, errors.Wrap(ErrNotADirectory, dirPath)
	}

	return LoadDir(os.DirFS(dirPath))
}

// LoadDir loads all tagged SQL files from the root of fsys. The filesystem
// can be a regular directory, an embedded filesystem, or any other fs.FS
// implementation.
//
// The first file that fails to parse aborts the load and its error is
// returned wrapped with the file's path. A sqlfile.SyntaxError can be
// recovered from the result with errors.As.
func LoadDir(fsys fs.FS) (*Dir, error) {
	// NB: ReadDir returns entries sorted by file name.
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migration directory")
	}

	dir := &Dir{fs: fsys}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != sqlfile.Extension {
			continue
		}

		// A bare ".sql" has no name to record it under.
		if sqlfile.Stem(entry.Name()) == "" {
			continue
		}

		f, err := sqlfile.LoadFile(fsys, entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load migration: %s", entry.Name())
		}

		dir.Files = append(dir.Files, f)
	}

	return dir, nil
}

// File returns the file named name (without extension).
func (d *Dir) File(name string) (*sqlfile.File, bool) {
	for _, f := range d.Files {
		if f.Name == name {
			return f, true
		}
	}

	return nil, false
}

// Names returns the names of all files in application order.
func (d *Dir) Names() []string {
	names := make([]string, len(d.Files))
	for i, f := range d.Files {
		names[i] = f.Name
	}

	return names
}

// Tagged returns the files that declare tag, in application order.
func (d *Dir) Tagged(tag string) []*sqlfile.File {
	var files []*sqlfile.File
	for _, f := range d.Files {
		if f.HasTag(tag) {
			files = append(files, f)
		}
	}

	return files
}

// Sum computes a sum file from the directory's current contents.
func (d *Dir) Sum() *SumFile {
	return NewSumFile(d.Files...)
}

// RecordedSum reads the sum file stored in the directory. ErrNoSumFile is
// returned when there is none.
func (d *Dir) RecordedSum() (*SumFile, error) {
	f, err := d.fs.Open(consts.SumFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSumFile
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", consts.SumFileName)
	}
	defer func() { _ = f.Close() }()

	sum, err := LoadSumFile(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", consts.SumFileName)
	}

	return sum, nil
}

// Verify compares the recorded sum file with the directory's current
// contents. ErrNoSumFile is returned when nothing has been recorded and
// ErrSumFileTampered when the sum file was edited by hand.
func (d *Dir) Verify() (*SumDiff, error) {
	recorded, err := d.RecordedSum()
	if err != nil {
		return nil, err
	}

	return recorded.Compare(d.Sum()), nil
}
