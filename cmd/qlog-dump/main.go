// qlog-dump prints the contents of an archived qlog trace. It reads plain
// or gzip-compressed JSON-SEQ files written by qlog-collector and prints
// one line per event, or per-event-name counts with -summary.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/m-lab/go/rtx"

	"github.com/ansg191/quiche/qlog"
)

var (
	summary = flag.Bool("summary", false, "Print per-event-name counts instead of events")
	raw     = flag.Bool("raw", false, "Print the raw JSON of each event")
)

// gzFile closes the gzip stream and the file underneath it.
type gzFile struct {
	*gzip.Reader
	fp *os.File
}

func (g gzFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.fp.Close(); err == nil {
		err = cerr
	}
	return err
}

func open(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(fp)
		if err != nil {
			fp.Close()
			return nil, err
		}
		return gzFile{Reader: gz, fp: fp}, nil
	}
	return fp, nil
}

func dump(w io.Writer, r *qlog.Reader) error {
	header, err := r.Header()
	if err != nil {
		return err
	}
	if header.Trace.Title != "" {
		fmt.Fprintf(w, "# %s\n", header.Trace.Title)
	}
	counts := make(map[string]int)
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var recErr *qlog.RecordError
		if errors.As(err, &recErr) {
			fmt.Fprintf(os.Stderr, "skipping record %d: %v\n", recErr.Record, recErr.Err)
			continue
		}
		if err != nil {
			return err
		}
		if *summary {
			counts[ev.Name()]++
			continue
		}
		if *raw {
			b, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n", b)
			continue
		}
		fmt.Fprintf(w, "%12.3f  %s\n", ev.Time, ev.Name())
	}
	if *summary {
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%8d  %s\n", counts[name], name)
		}
	}
	return nil
}

func main() {
	flag.Parse()
	name := flag.Arg(0)
	src, err := open(name)
	rtx.Must(err, "Could not open %q", name)
	defer src.Close()
	rtx.Must(dump(os.Stdout, qlog.NewReader(src)), "Could not read %q", name)
}
