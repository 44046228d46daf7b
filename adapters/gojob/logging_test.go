package gojob

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

type recordingLogger struct {
	infos []string
}

func (l *recordingLogger) Trace(string, ...any) {}
func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(msg string, _ ...any) {
	l.infos = append(l.infos, msg)
}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Fatal(string, ...any) {}
func (l *recordingLogger) WithContext(context.Context) glog.Logger {
	return l
}

type recordingProvider struct {
	logger glog.Logger
}

func (p *recordingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

func TestResolveForJob_BridgesServiceLoggersIntoWorkerRuntime(t *testing.T) {
	logger := &recordingLogger{}
	provider := &recordingProvider{logger: logger}

	resolvedProvider, resolvedLogger, jobProvider, jobLogger := ResolveForJob("triggers", provider, nil)
	if resolvedProvider == nil || resolvedLogger == nil {
		t.Fatalf("expected resolved glog logger and provider")
	}
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	jobLogger.Info("retention sweep complete")
	if len(logger.infos) != 1 || logger.infos[0] != "retention sweep complete" {
		t.Fatalf("expected bridged log line, got %#v", logger.infos)
	}
}

func TestResolveForJob_NilInputsFallBackToNop(t *testing.T) {
	_, resolvedLogger, _, jobLogger := ResolveForJob("triggers", nil, nil)
	if resolvedLogger == nil {
		t.Fatalf("expected nop fallback logger")
	}
	if jobLogger == nil {
		t.Fatalf("expected go-job bridge even for nop logger")
	}
	jobLogger.Info("no sink")
}
