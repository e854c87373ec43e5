// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/counterprogram/config"
)

const (
	logMaxSizeMB  = 8
	logMaxFiles   = 5
	logMaxAgeDays = 7
)

// logFactory writes JSON logs to a rotated file per logger and, unless the
// display level is off, colored logs to stderr.
type logFactory struct {
	config logging.Config

	lock    sync.Mutex
	loggers map[string]logging.Logger
}

func newLogFactory(cfg *config.Config) (*logFactory, error) {
	logLevel, err := logging.ToLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	displayLevel, err := logging.ToLevel(cfg.LogDisplayLevel)
	if err != nil {
		return nil, err
	}
	lc := logging.Config{}
	lc.LogLevel = logLevel
	lc.DisplayLevel = displayLevel
	lc.LogFormat = logging.JSON
	lc.Directory = cfg.LogPath()
	lc.MaxSize = logMaxSizeMB
	lc.MaxFiles = logMaxFiles
	lc.MaxAge = logMaxAgeDays
	lc.Compress = true
	lc.DisableWriterDisplaying = displayLevel == logging.Off
	return &logFactory{
		config:  lc,
		loggers: make(map[string]logging.Logger),
	}, nil
}

func (f *logFactory) Make(name string) (logging.Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.loggers[name]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", name)
	}

	var display io.WriteCloser = nopCloser{os.Stderr}
	if f.config.DisableWriterDisplaying {
		display = nopCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(f.config.DisplayLevel, display, logging.Colors.ConsoleEncoder())
	consoleCore.WriterDisabled = f.config.DisableWriterDisplaying

	file := &lumberjack.Logger{
		Filename:   filepath.Join(f.config.Directory, name+".log"),
		MaxSize:    f.config.MaxSize,
		MaxAge:     f.config.MaxAge,
		MaxBackups: f.config.MaxFiles,
		Compress:   f.config.Compress,
	}
	fileCore := logging.NewWrappedCore(f.config.LogLevel, file, f.config.LogFormat.FileEncoder())

	l := logging.NewLogger(f.config.LogFormat.WrapPrefix(name), consoleCore, fileCore)
	f.loggers[name] = l
	l.Debug("logger created", zap.String("directory", f.config.Directory))
	return l, nil
}

func (f *logFactory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, l := range f.loggers {
		l.Stop()
	}
	f.loggers = nil
}

// nopCloser keeps the shared stderr and discard writers open when a logger
// stops.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
