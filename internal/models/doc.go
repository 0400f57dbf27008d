// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package models holds the shared wire types of the HTTP API: the
// response envelope, its metadata block and the structured error shape.
package models
