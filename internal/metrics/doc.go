// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package metrics exposes the service's Prometheus instrumentation.
//
// All collectors are registered with the default registry via promauto
// at package load, so importing this package is enough to make them
// visible on the /metrics endpoint.
package metrics
