package log

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// formatter renders a logrus.Entry through a %-token pattern: %time,
// %level, %field, %msg.
type formatter struct {
	pattern string
	time    string
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	output := f.pattern
	output = strings.Replace(output, "%time", entry.Time.Format(f.time), 1)
	output = strings.Replace(output, "%level", entry.Level.String(), 1)
	output = strings.Replace(output, "%field", buildFields(entry), 1)
	output = strings.Replace(output, "%msg", entry.Message, 1)
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return []byte(output), nil
}

func buildFields(entry *logrus.Entry) string {
	if len(entry.Data) == 0 {
		return ""
	}
	fields := make([]string, 0, len(entry.Data))
	for key, val := range entry.Data {
		s, ok := val.(string)
		if !ok {
			s = fmt.Sprint(val)
		}
		fields = append(fields, key+"="+s)
	}
	return strings.Join(fields, ",")
}
