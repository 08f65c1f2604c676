package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/negocios/consola/internal/reporting"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	// Comments go straight to the buffer; pending csv rows must land first.
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	line = strings.TrimRight(line, "\r\n") + "\r\n"
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// writeTableCSV writes the metadata comments, the header, the body and the
// totals row. The totals label fills Span columns so the cells line up.
func writeTableCSV(w io.Writer, table reporting.Table) error {
	streamer := newCSVStreamer(w)
	if err := writeMetadata(streamer, table); err != nil {
		return err
	}
	if err := streamer.writeRow(table.Header); err != nil {
		return err
	}
	for _, row := range table.Body {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	if err := streamer.writeRow(footerRow(table.Footer)); err != nil {
		return err
	}
	return streamer.Flush()
}

func writeMetadata(streamer *csvStreamer, table reporting.Table) error {
	if err := streamer.writeComment(fmt.Sprintf("# Informe: %s", table.Title)); err != nil {
		return err
	}
	if err := streamer.writeComment("# " + table.Caption); err != nil {
		return err
	}
	if !table.GeneratedAt.IsZero() {
		if err := streamer.writeComment("# Generado: " + table.GeneratedAt.Format("02/01/2006 15:04")); err != nil {
			return err
		}
	}
	if table.Notice != "" {
		if err := streamer.writeComment("# Aviso: " + table.Notice); err != nil {
			return err
		}
	}
	if len(table.Warnings) == 0 {
		return nil
	}
	return streamer.writeComment("# Advertencias: " + strings.Join(table.Warnings, "; "))
}

func footerRow(f reporting.Footer) []string {
	row := make([]string, 0, max(f.Span, 1)+len(f.Cells))
	row = append(row, f.Label)
	for i := 1; i < f.Span; i++ {
		row = append(row, "")
	}
	return append(row, f.Cells...)
}
