/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log provides the context-scoped logger accessor the scheduler
// calls the same way the teacher calls knative.dev/pkg/logging.FromContext
// — a *zap.SugaredLogger retrieved from ctx, falling back to a package
// default when the caller hasn't installed one. This module has no
// controller-runtime context to piggyback on, so we own this one small
// seam directly over go.uber.org/zap instead.
package log

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

var defaultLogger = zap.NewNop().Sugar()

// IntoContext installs l as the logger future FromContext calls on ctx
// (and its children) will return.
func IntoContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger installed on ctx, or a no-op logger if
// none was installed. The scheduler never panics for missing logging
// setup — logging is ambient, not load-bearing.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return defaultLogger
}
