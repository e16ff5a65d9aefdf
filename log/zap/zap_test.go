package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exists-forall/id-cache"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("save skipped", idcache.Fields{"name": "words", "observed": uint64(3)})
	l.Warn("version read error", idcache.Fields{"err": errors.New("boom")})
	l.Info("plain", nil)
	l.Error("outage", idcache.Fields{})

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["name"] != "words" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["err"] != "boom" {
		t.Fatalf("error field not rendered: %+v", entries[1].ContextMap())
	}
	if entries[3].Level != zapcore.ErrorLevel {
		t.Fatalf("level=%v", entries[3].Level)
	}
}
