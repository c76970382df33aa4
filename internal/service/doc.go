// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

// Package service is the public read API consumed by the transport layer.
//
// Every bucket read materializes the viewer's tasks through the caches,
// classifies them and assembles one page. Errors are returned as they are;
// a failed read never degrades into an empty list.
package service
