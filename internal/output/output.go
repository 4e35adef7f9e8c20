package output

// Output pairs the terminal logger with the optional stop log
type Output struct {
	Logger  Logger
	StopLog *StopLog
}

// NewOutput wraps logger. An empty stopLogPath disables the file log.
func NewOutput(logger Logger, stopLogPath string, maxSizeMB, maxFiles int) *Output {
	out := &Output{Logger: logger}
	if stopLogPath != "" {
		out.StopLog = NewStopLog(stopLogPath, maxSizeMB, maxFiles)
	}
	return out
}

// LogStopReason records why a connection ended, on the terminal and in the stop log.
func (o *Output) LogStopReason(sessionID, reason string, err error) {
	if err != nil {
		o.Logger.Error("Connection %s stopped: %s - %v", sessionID, reason, err)
	} else {
		o.Logger.Error("Connection %s stopped: %s", sessionID, reason)
	}

	if o.StopLog == nil {
		return
	}
	record := StopRecord{Kind: "connection-broken", SessionID: sessionID, Reason: reason, Err: err}
	if logErr := o.StopLog.Record(record); logErr != nil {
		o.Logger.Error("Failed to write to stop log: %v", logErr)
	}
}
