// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package logs

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
)

var (
	log     = logging.MustGetLogger("main")
	rlogger runtimeLogger
)

type runtimeLogger struct {
	f *os.File
}

// RuntimeSetup holds the options of the runtime logger
type RuntimeSetup struct {
	// RunLog is the path of the log file, empty means stderr
	RunLog string
	// Debug lowers the log level to DEBUG and adds source locations
	Debug bool
}

// ReloadRuntimeLogs reopens the runtime logs to allow rotations
func ReloadRuntimeLogs(setup RuntimeSetup) {
	if rlogger.f == os.Stderr && setup.RunLog == "" {
		// Logger already set up and connected to the console.
		// Don't reload to avoid breaking journald.
		return
	}

	logColor := false

	stat, _ := os.Stdout.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		logColor = true
	}

	if rlogger.f != nil {
		rlogger.f.Close()
	} else {
		rlogger.f = os.Stderr
	}

	if setup.RunLog != "" {
		var err error
		rlogger.f, err = os.OpenFile(setup.RunLog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Cannot open log file for writing")
			rlogger.f = os.Stderr
		} else {
			logColor = false
		}
	}

	logBackend := logging.NewLogBackend(rlogger.f, "", 0)
	logBackend.Color = logColor

	logging.SetBackend(logBackend)

	if setup.Debug {
		logging.SetFormatter(logging.MustStringFormatter("%{shortfile:-20s}%{time:2006/01/02 15:04:05.000 MST} %{message}"))
		logging.SetLevel(logging.DEBUG, "main")
	} else {
		logging.SetFormatter(logging.MustStringFormatter("%{time:2006/01/02 15:04:05.000 MST} %{message}"))
		logging.SetLevel(logging.INFO, "main")
	}
}
