/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger adapts structured loggers to types.Logger.
package logger

import (
	"github.com/rulego/weaver/api/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap adapts l to types.Logger. Messages are written at info level.
func Zap(l *zap.Logger) types.Logger {
	return ZapAt(l, zapcore.InfoLevel)
}

// ZapAt adapts l to types.Logger, writing messages at level.
func ZapAt(l *zap.Logger, level zapcore.Level) types.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l.WithOptions(zap.AddCallerSkip(1)).Sugar(), level: level}
}

type zapLogger struct {
	l     *zap.SugaredLogger
	level zapcore.Level
}

func (z *zapLogger) Printf(format string, v ...interface{}) {
	switch z.level {
	case zapcore.DebugLevel:
		z.l.Debugf(format, v...)
	case zapcore.WarnLevel:
		z.l.Warnf(format, v...)
	case zapcore.ErrorLevel:
		z.l.Errorf(format, v...)
	default:
		z.l.Infof(format, v...)
	}
}
