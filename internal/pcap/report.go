package pcap

// Severity mirrors TSDuck's Report& severity levels closely enough for
// this module's needs, without pulling a logging library into the core:
// the core only ever calls back through Reporter.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// Reporter is the error/warning sink the core reports through. Command
// layers wire a logrus-backed implementation into it; the core package
// itself never imports a logging library.
type Reporter interface {
	Reportf(severity Severity, format string, args ...interface{})
}

// nopReporter discards everything. Used when a Reader is opened without
// an explicit Reporter.
type nopReporter struct{}

func (nopReporter) Reportf(Severity, string, ...interface{}) {}
