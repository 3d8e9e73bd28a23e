// Copyright 2025 samber.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/samber/ro/blob/main/licenses/LICENSE.apache.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rozap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// UnhandledErrorHandler returns a handler suitable for ro.SetOnUnhandledError
// that logs the error at level through logger.
func UnhandledErrorHandler(logger *zap.Logger, level zapcore.Level) func(ctx context.Context, err error) {
	return func(ctx context.Context, err error) {
		logger.Log(level, "ro: unhandled error", zap.Error(err))
	}
}

// DroppedNotificationHandler returns a handler suitable for
// ro.SetOnDroppedNotification that logs the dropped notification at level
// through logger.
func DroppedNotificationHandler(logger *zap.Logger, level zapcore.Level) func(ctx context.Context, notification fmt.Stringer) {
	return func(ctx context.Context, notification fmt.Stringer) {
		logger.Log(level, "ro: dropped notification", zap.String("notification", notification.String()))
	}
}

// FatalOnUnhandledError returns a handler suitable for
// ro.SetOnUnhandledError that terminates the process via logger.Fatal. Use
// only in entrypoints where an unhandled error in a publisher pipeline
// should be treated as a program bug.
func FatalOnUnhandledError(logger *zap.Logger) func(ctx context.Context, err error) {
	return func(ctx context.Context, err error) {
		logger.Fatal("ro: unhandled error", zap.Error(err))
	}
}
