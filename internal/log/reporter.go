package log

import "firestige.xyz/pcapflow/internal/pcap"

// Reporter adapts the global Logger to pcap.Reporter, so warnings raised
// deep in the capture reader and filter stage flow through the same
// rotated output as everything else.
type Reporter struct {
	Logger Logger
}

func NewReporter(l Logger) *Reporter {
	if l == nil {
		l = GetLogger()
	}
	return &Reporter{Logger: l}
}

func (r *Reporter) Reportf(severity pcap.Severity, format string, args ...interface{}) {
	switch severity {
	case pcap.SeverityDebug:
		r.Logger.Debugf(format, args...)
	case pcap.SeverityInfo:
		r.Logger.Infof(format, args...)
	case pcap.SeverityWarning:
		r.Logger.Warnf(format, args...)
	case pcap.SeverityError:
		r.Logger.Errorf(format, args...)
	default:
		r.Logger.Infof(format, args...)
	}
}
