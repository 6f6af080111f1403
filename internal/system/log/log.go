/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package log holds the process-wide logrus logger.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/system/config"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// GetLogger returns the shared logger, creating a JSON logger at info level on first use.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		if logger == nil {
			logger = newLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
		}
	})
	return logger
}

// Init configures the shared logger from the logging section of the deployment config.
func Init(cfg config.LoggingConfig) *logrus.Logger {
	l := newLogger(cfg)
	once.Do(func() {})
	logger = l
	return l
}

// SetLogger replaces the shared logger (for testing purposes)
func SetLogger(l *logrus.Logger) {
	once.Do(func() {})
	logger = l
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	l := logrus.New()

	if strings.EqualFold(cfg.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetOutput(outputFor(cfg.Output))

	return l
}

func outputFor(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stdout
		}
		return f
	}
}
