// Package metrics provides an observability framework for render metrics.
//
// # Design Philosophy
//
// This package implements the Null Object pattern to enable metrics collection
// without requiring explicit nil checks throughout the codebase. By default,
// all components use NoopRecorder which implements the Recorder interface with
// no-op methods that inline to nothing at compile time.
//
// # Architecture
//
// The metrics system has three components:
//
//  1. Recorder interface - Defines all metrics operations
//  2. NoopRecorder - Default implementation that does nothing (zero overhead)
//  3. PrometheusRecorder - Registers on a prometheus.Registry and forwards
//
// # Usage Pattern
//
// Components receive a Recorder through dependency injection:
//
//	type Renderer struct {
//	    recorder metrics.Recorder
//	}
//
// One-off CLI renders keep the NoopRecorder. Backfill and watch runs build a
// PrometheusRecorder; watch mode additionally serves the registry over HTTP
// via HTTPHandler when a metrics address is configured.
package metrics
