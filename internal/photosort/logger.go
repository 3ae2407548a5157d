package photosort

// Logger provides structured logging for the service layer.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger is a Logger that discards all output. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// progress emits an Info line each time a pass has handled another
// interval files.
type progress struct {
	logger   Logger
	msg      string
	interval int64
	next     int64
}

// newProgress starts counting at done, the number of files a resumed pass
// has already handled.
func newProgress(logger Logger, msg string, interval int, done int64) *progress {
	return &progress{logger: logger, msg: msg, interval: int64(interval), next: done + int64(interval)}
}

// update logs when done has reached the next threshold.
func (p *progress) update(done int64, args ...any) {
	if done < p.next {
		return
	}
	p.logger.Info(p.msg, append([]any{"files", done}, args...)...)
	p.next = done + p.interval
}
