// Command qbsdiff computes a BSDIFF40 patch from two files.
//
// Usage: qbsdiff [flags] <source> <target> <patch>
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"

	"github.com/unbasical/qbsdiff/configs"
	"github.com/unbasical/qbsdiff/internal/pkg/fileutils"
	"github.com/unbasical/qbsdiff/internal/pkg/logutils"
	"github.com/unbasical/qbsdiff/pkg/bsdiff"
)

func main() {
	var (
		app = kingpin.New("qbsdiff", "Compute a BSDIFF40 patch from a source and target file")

		sourcePath = app.Arg("source", "path to the source file").Required().ExistingFile()
		targetPath = app.Arg("target", "path to the target file").Required().ExistingFile()
		patchPath  = app.Arg("patch", "path to write the resulting patch to").Required().String()

		configPath          = app.Flag("config", "path to a YAML config file").Envar("QBSDIFF_CONFIG").String()
		smallMatchThreshold = app.Flag("small-match-threshold", "minimum extra match length required to commit").Int()
		bufferSize          = app.Flag("buffer-size", "chunk size used when streaming compressed output").Int()
		compressionLevel    = app.Flag("compression-level", "bzip2 compression level (1..9)").Int()
		parallelism         = app.Flag("parallelism", "number of worker goroutines permitted; 0/1 = single-threaded").Int()
		logLevel            = app.Flag("log-level", "log level, one of DEBUG, INFO, WARN, ERROR").Default("INFO").Envar("QBSDIFF_LOG_LEVEL").Enum("DEBUG", "INFO", "WARN", "ERROR", "debug", "info", "warn", "error")
		logFormat           = app.Flag("log-format", "log format, one of TEXT, JSON").Default("TEXT").Envar("QBSDIFF_LOG_FORMAT").Enum("TEXT", "JSON", "text", "json")
	)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := logutils.SetLogLevel(*logLevel); err != nil {
		log.Fatal(err)
	}
	logutils.SetLogFormat(*logFormat)

	cfg, err := configs.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyOverrides(&cfg, *smallMatchThreshold, *bufferSize, *compressionLevel, *parallelism)

	source := fileutils.ReadOrPanic(*sourcePath)
	target := fileutils.ReadOrPanic(*targetPath)

	out, err := os.Create(*patchPath)
	if err != nil {
		log.Fatalf("failed to create patch file: %s", err)
	}
	defer out.Close()

	differ := bsdiff.NewDiffer(source, target,
		bsdiff.WithSmallMatchThreshold(cfg.SmallMatchThreshold),
		bsdiff.WithBufferSize(cfg.BufferSize),
		bsdiff.WithCompressionLevel(cfg.CompressionLevel),
		bsdiff.WithParallelism(cfg.Parallelism),
	)
	if err := differ.Compare(out); err != nil {
		log.Fatalf("diff failed: %s", err)
	}
	log.Infof("patch written to %s", *patchPath)
}

func applyOverrides(cfg *configs.Config, smallMatch, bufferSize, level, parallelism int) {
	if smallMatch != 0 {
		cfg.SmallMatchThreshold = smallMatch
	}
	if bufferSize != 0 {
		cfg.BufferSize = bufferSize
	}
	if level != 0 {
		cfg.CompressionLevel = level
	}
	if parallelism != 0 {
		cfg.Parallelism = parallelism
	}
}
