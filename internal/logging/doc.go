// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package logging provides structured logging built on zerolog.
//
// The package maintains a process-wide logger configured once at startup
// via Init and exposed through package-level helpers (Info, Error, With
// and friends). Component loggers are derived with WithComponent, and
// request-scoped fields flow through context via Ctx. An slog.Handler
// adapter bridges libraries that expect log/slog onto the same backend.
package logging
