// Package results contains the archive files the collector writes.
package results

import (
	"encoding/json"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/ansg191/quiche/collector/metrics"
	"github.com/ansg191/quiche/logging"
)

// recordSeparator frames JSON text sequences (RFC 7464).
const recordSeparator = 0x1e

// File is the archive file one qlog stream is written to.
type File struct {
	// Writer is the writer for records.
	Writer io.Writer

	// UUID identifies this stream.
	UUID string

	// Name is the full path of the file on disk.
	Name string

	fp   *os.File
	gzip *gzip.Writer
}

// newFile opens an archive file under datadir on success and returns an
// error on failure.
func newFile(datadir, kind, uuid string, compress bool) (*File, error) {
	timestamp := time.Now().UTC()
	dir := path.Join(datadir, "qlog", timestamp.Format("2006/01/02"))
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	name := dir + "/qlog-" + kind + "-" + timestamp.Format("20060102T150405.000000000Z") + "." + uuid + ".sqlog"
	if compress {
		name += ".gz"
	}
	// Nanosecond timestamps plus the UUID make conflicts unlikely. If that
	// assumption fails, O_EXCL will let us know.
	fp, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	if !compress {
		return &File{
			Writer: fp,
			UUID:   uuid,
			Name:   name,
			fp:     fp,
		}, nil
	}
	writer, err := gzip.NewWriterLevel(fp, gzip.BestSpeed)
	if err != nil {
		fp.Close()
		return nil, err
	}
	return &File{
		Writer: writer,
		UUID:   uuid,
		Name:   name,
		fp:     fp,
		gzip:   writer,
	}, nil
}

// NewFile creates an archive file for one stream in datadir. The kind
// argument distinguishes live from uploaded streams and becomes part of
// the file name.
func NewFile(uuid, datadir, kind string, compress bool) (*File, error) {
	fp, err := newFile(datadir, kind, uuid, compress)
	if err != nil {
		logging.Logger.WithError(err).Warn("newFile failed")
		return nil, err
	}
	return fp, nil
}

// WriteRecord appends one JSON-SEQ record. The raw record bytes are
// preserved as received, with framing normalized.
func (fp *File) WriteRecord(raw []byte) error {
	buf := make([]byte, 0, len(raw)+2)
	buf = append(buf, recordSeparator)
	buf = append(buf, raw...)
	buf = append(buf, '\n')
	n, err := fp.Writer.Write(buf)
	metrics.ArchiveBytes.Add(float64(n))
	return err
}

// Close closes the archive file.
func (fp *File) Close() error {
	if fp.gzip != nil {
		err := fp.gzip.Close()
		if err != nil {
			fp.fp.Close()
			return err
		}
	}
	return fp.fp.Close()
}

// MetadataName returns the path of the sidecar metadata file.
func (fp *File) MetadataName() string {
	return strings.TrimSuffix(strings.TrimSuffix(fp.Name, ".gz"), ".sqlog") + ".meta.json"
}

// WriteMetadata serializes the stream's archival metadata next to the
// archive file.
func (fp *File) WriteMetadata(meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(fp.MetadataName(), data, 0644)
}
