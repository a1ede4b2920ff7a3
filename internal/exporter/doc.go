// Package exporter publishes Heatzy device state as Prometheus metrics.
//
// A Collector lists the account's devices on every scrape and reads the
// mode of each online device through a single heatzy.Client, sequentially.
// Server wraps the collector's registry in an HTTP server that stops on
// SIGINT, SIGTERM or context cancellation.
//
// Metrics:
//
//	heatzy_device_online{did,alias,product}     1 online, 0 offline
//	heatzy_device_mode{did,alias,mode}          1 for the active mode, 0 for the others
//	heatzy_device_mode_code{did,alias}          integer mode code
//	heatzy_scrape_success                       1 when the device listing succeeded
//	heatzy_last_success_timestamp_seconds
//	heatzy_scrape_duration_seconds
package exporter
