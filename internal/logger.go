package internal

import (
	"applepay/services"
	"fmt"
	"log"
	"time"
)

// LogMessage is the record written to the optional database sink.
type LogMessage struct {
	Time  time.Time `json:"time" bson:"time"`
	Level string    `json:"level" bson:"level"`
	Scope string    `json:"scope" bson:"scope"`
	Text  string    `json:"text" bson:"text"`
}

func (m *LogMessage) DataType() string {
	return "log"
}

// Logger writes scoped log lines to stdout and, when a database sink is
// configured, mirrors them there. Debug lines are gated by the debug flag.
type Logger struct {
	scope string
	debug bool
	sink  services.Database
}

func NewLogger(scope string, debug bool, sink services.Database) *Logger {
	return &Logger{
		scope: scope,
		debug: debug,
		sink:  sink,
	}
}

func (l *Logger) Debug(message string) {
	if !l.debug {
		return
	}
	l.write("DEBUG", message)
}

func (l *Logger) Info(message string) {
	l.write("INFO", message)
}

func (l *Logger) Warn(message string) {
	l.write("WARNING", message)
}

func (l *Logger) Error(message string, err error) {
	l.write("ERROR", fmt.Sprintf("%s; %v", message, err))
}

func (l *Logger) write(level, message string) {
	log.Printf("%s: %s: %s", l.scope, level, message)
	if l.sink == nil {
		return
	}
	record := &LogMessage{
		Time:  time.Now(),
		Level: level,
		Scope: l.scope,
		Text:  message,
	}
	if err := l.sink.WriteLogMessage(record); err != nil {
		log.Printf("%s: ERROR: write log to sink; %v", l.scope, err)
	}
}

// secret masks identifiers and tokens so they never land in logs in full.
func secret(some string) string {
	if len(some) > 5 {
		return fmt.Sprintf("%s***", some[0:5])
	}
	if some == "" {
		return "?"
	}
	return "***"
}
