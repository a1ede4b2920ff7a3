package exporter

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/muurk/heatzy/pkg/heatzy"
)

// DeviceSource is the subset of *heatzy.Client the collector reads from
type DeviceSource interface {
	ListDevices() ([]heatzy.Device, error)
	GetDeviceMode(deviceID string) (heatzy.DeviceMode, error)
}

// Filter restricts collection to a single device. The zero value matches all devices.
type Filter struct {
	Name string // Exact alias
	ID   string // Device ID
}

// IsZero reports whether the filter matches every device
func (f Filter) IsZero() bool {
	return f.Name == "" && f.ID == ""
}

// Match reports whether device passes the filter
func (f Filter) Match(device heatzy.Device) bool {
	if f.ID != "" && device.DID != f.ID {
		return false
	}
	if f.Name != "" && device.Alias() != f.Name {
		return false
	}
	return true
}

// Collector exposes device state as Prometheus metrics.
// Each scrape lists devices and reads the mode of every online device, one
// request at a time. Concurrent scrapes are serialized.
type Collector struct {
	source DeviceSource
	filter Filter
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex

	online      *prometheus.GaugeVec
	mode        *prometheus.GaugeVec
	modeCode    *prometheus.GaugeVec
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
	success     prometheus.Gauge
}

// NewCollector creates a collector reading from source
func NewCollector(source DeviceSource, filter Filter, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		source: source,
		filter: filter,
		logger: logger,
		now:    time.Now,
		online: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatzy_device_online",
			Help: "Device connectivity (1=online, 0=offline)",
		}, []string{"did", "alias", "product"}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatzy_device_mode",
			Help: "Current heating mode per device (1 for the active mode, 0 otherwise)",
		}, []string{"did", "alias", "mode"}),
		modeCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatzy_device_mode_code",
			Help: "Integer code of the current heating mode (0=comfort ... 5=comfort-2)",
		}, []string{"did", "alias"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heatzy_scrape_duration_seconds",
			Help: "Duration of the last Heatzy API scrape",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heatzy_last_success_timestamp_seconds",
			Help: "Last successful Heatzy scrape timestamp (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heatzy_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.online.Describe(ch)
	c.mode.Describe(ch)
	c.modeCode.Describe(ch)
	c.duration.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.success.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.now()
	c.scrape()
	c.duration.Set(c.now().Sub(start).Seconds())
	c.collectAll(ch)
}

// scrape refreshes every gauge. A listing failure keeps the previous device
// series and marks the scrape failed.
func (c *Collector) scrape() {
	devices, err := c.source.ListDevices()
	if err != nil {
		c.logger.Error("Failed to list devices",
			zap.String("reason", heatzy.ShortErrorMessage(err)),
			zap.Error(err),
		)
		c.success.Set(0)
		return
	}

	devices = lo.Filter(devices, func(d heatzy.Device, _ int) bool {
		return c.filter.Match(d)
	})
	c.logger.Debug("Scraping devices",
		zap.Strings("did", lo.Map(devices, func(d heatzy.Device, _ int) string { return d.DID })),
	)

	c.online.Reset()
	c.mode.Reset()
	c.modeCode.Reset()

	// A filter that selects nothing is a misconfiguration, not an empty account
	if !c.filter.IsZero() && len(devices) == 0 {
		c.logger.Warn("No device matches the exporter filter",
			zap.String("name", c.filter.Name),
			zap.String("did", c.filter.ID),
		)
		c.success.Set(0)
		return
	}

	for _, device := range devices {
		alias := lo.FromPtrOr(device.DevAlias, "")
		c.online.WithLabelValues(device.DID, alias, device.ProductName).Set(boolToFloat(device.IsOnline))

		if !device.IsOnline {
			continue
		}

		current, err := c.source.GetDeviceMode(device.DID)
		if err != nil {
			c.logger.Warn("Failed to read device mode",
				zap.String("did", device.DID),
				zap.String("alias", alias),
				zap.String("reason", heatzy.ShortErrorMessage(err)),
				zap.Error(err),
			)
			continue
		}

		for _, m := range heatzy.Modes() {
			c.mode.WithLabelValues(device.DID, alias, m.CLIString()).Set(boolToFloat(m == current))
		}
		c.modeCode.WithLabelValues(device.DID, alias).Set(float64(current.Int()))
	}

	c.success.Set(1)
	c.lastSuccess.Set(float64(c.now().Unix()))
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric) {
	c.online.Collect(ch)
	c.mode.Collect(ch)
	c.modeCode.Collect(ch)
	c.duration.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.success.Collect(ch)
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
