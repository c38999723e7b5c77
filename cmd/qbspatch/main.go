// Command qbspatch applies a BSDIFF40 patch to a source file.
//
// Usage: qbspatch [flags] <source> <patch> <target>
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"

	"github.com/unbasical/qbsdiff/internal/pkg/fileutils"
	"github.com/unbasical/qbsdiff/internal/pkg/logutils"
	"github.com/unbasical/qbsdiff/pkg/bsdiff"
)

func main() {
	var (
		app = kingpin.New("qbspatch", "Apply a BSDIFF40 patch to a source file")

		sourcePath = app.Arg("source", "path to the source file").Required().ExistingFile()
		patchPath  = app.Arg("patch", "path to the patch file").Required().ExistingFile()
		targetPath = app.Arg("target", "path to write the reconstructed target to").Required().String()

		logLevel  = app.Flag("log-level", "log level, one of DEBUG, INFO, WARN, ERROR").Default("INFO").Envar("QBSPATCH_LOG_LEVEL").Enum("DEBUG", "INFO", "WARN", "ERROR", "debug", "info", "warn", "error")
		logFormat = app.Flag("log-format", "log format, one of TEXT, JSON").Default("TEXT").Envar("QBSPATCH_LOG_FORMAT").Enum("TEXT", "JSON", "text", "json")
	)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := logutils.SetLogLevel(*logLevel); err != nil {
		log.Fatal(err)
	}
	logutils.SetLogFormat(*logFormat)

	source := fileutils.ReadOrPanic(*sourcePath)
	patchFile, err := os.Open(*patchPath)
	if err != nil {
		log.Fatalf("failed to open patch file: %s", err)
	}
	defer patchFile.Close()

	info, err := patchFile.Stat()
	if err != nil {
		log.Fatalf("failed to stat patch file: %s", err)
	}

	p, err := bsdiff.NewPatch(patchFile, info.Size())
	if err != nil {
		log.Fatalf("failed to parse patch: %s", err)
	}
	log.Debugf("target size hint: %d bytes", p.HintTargetSize())

	out, err := os.Create(*targetPath)
	if err != nil {
		log.Fatalf("failed to create target file: %s", err)
	}
	defer out.Close()

	if err := p.Apply(source, out); err != nil {
		log.Fatalf("patch failed: %s", err)
	}
	log.Infof("target written to %s", *targetPath)
}
