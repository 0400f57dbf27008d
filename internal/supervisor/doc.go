// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package supervisor builds the suture supervision tree that keeps the
// long-running parts of Eventlens alive: the HTTP server and the
// periodic training loop. Each runs under its own child supervisor so a
// crashing training cycle never takes down the API.
package supervisor
