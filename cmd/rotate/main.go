// Command rotate applies page turns to a PDF from the command line, using the same
// session and export pipeline as the server.
//
//	rotate -in scan.pdf -turns 1,0,2 -out ./done
//	rotate -in scan.pdf -all 1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/engine"
	"github.com/drummonds/rotatepdf/engine/pdfdoc"
	"github.com/drummonds/rotatepdf/intake"
	"github.com/drummonds/rotatepdf/session"
)

func main() {
	in := flag.String("in", "", "PDF to rotate")
	out := flag.String("out", ".", "Directory for the rotated copy")
	turns := flag.String("turns", "", "Comma separated quarter turns per page, e.g. 1,0,2")
	all := flag.Int("all", 0, "Quarter turns applied to every page before -turns")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	logger := config.SetupCLI(*verbose)
	engine.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path, err := rotateFile(ctx, *in, *out, *turns, *all)
	if err != nil {
		logger.Error("Rotation failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

// rotateFile loads in, clicks through the requested turns and writes the export into outDir
func rotateFile(ctx context.Context, in, outDir, turns string, all int) (string, error) {
	if in == "" {
		return "", errors.New("-in is required")
	}
	if !intake.HasPDFExtension(in) {
		return "", fmt.Errorf("%s is not a .pdf file", in)
	}
	clicks, err := parseTurns(turns)
	if err != nil {
		return "", err
	}

	f, err := os.Open(in)
	if err != nil {
		return "", fmt.Errorf("%w: %w", session.ErrIO, err)
	}
	defer f.Close()

	parser := pdfdoc.NewPDFCPU()
	s := session.New(intake.New(0), parser)
	if err := s.Load(ctx, filepath.Base(in), f); err != nil {
		return "", err
	}
	if len(clicks) > s.PageCount() {
		return "", fmt.Errorf("%w: %d turns given for %d pages", session.ErrInvalidIndex, len(clicks), s.PageCount())
	}

	for i := 0; i < all%4; i++ {
		if err := s.RotateAll(); err != nil {
			return "", err
		}
	}
	for page, n := range clicks {
		for i := 0; i < n%4; i++ {
			if err := s.Rotate(page); err != nil {
				return "", err
			}
		}
	}

	exporter := engine.NewExporter(parser, pdfdoc.ReaderVerifier{})
	result, err := exporter.ExportSession(ctx, s)
	if err != nil {
		return "", err
	}
	saver := engine.FileSaver{Dir: outDir}
	if err := saver.Save(ctx, result); err != nil {
		return "", err
	}
	engine.Logger.Info("Rotated copy written", "path", saver.Path(result), "pages", result.PageCount, "rotated", result.RotatedPages)
	return saver.Path(result), nil
}

// parseTurns reads "1,0,2" as click counts per page. Empty means no per-page turns.
func parseTurns(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	clicks := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad turn count %q for page %d", p, i+1)
		}
		clicks[i] = n
	}
	return clicks, nil
}
