package nrf24sim

import (
	"fmt"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// traceWriter backs one radio's optional human-readable trace file with a
// rotating lumberjack.Logger, matching how the ambient logging stack
// rotates its other on-disk output.
type traceWriter struct {
	lj *lumberjack.Logger
}

func newTraceWriter(path string) *traceWriter {
	return &traceWriter{lj: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		Compress:   false,
	}}
}

func (t *traceWriter) writeLine(line string) {
	t.lj.Write([]byte(line + "\n"))
}

func (t *traceWriter) Close() error { return t.lj.Close() }

// EnableTraceFile turns on per-radio tracing to path (log_to_file). Lines
// are `[t ms] [delta ms] TX|ACK N bytes`, where delta is time since this
// radio's previous traced transmission.
func (r *Radio) EnableTraceFile(path string) error {
	r.trace = newTraceWriter(path)
	r.haveLastTrace = false
	return nil
}

func (r *Radio) writeTrace(kind string, length uint8) {
	if r.trace == nil {
		return
	}
	now := time.Duration(r.clock.NowMicros() * float64(time.Microsecond))
	var delta time.Duration
	if r.haveLastTrace {
		delta = now - r.lastTraceTime
	}
	r.lastTraceTime = now
	r.haveLastTrace = true
	r.trace.writeLine(fmt.Sprintf("[%d ms] [%d ms] %s %d bytes",
		now.Milliseconds(), delta.Milliseconds(), kind, length))
}
