package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/veloflow/cruisectl/internal/controller"
	"github.com/veloflow/cruisectl/internal/router"
)

const (
	controllerSubsystem = "controller"
	routerSubsystem     = "router"
)

type ControllerCollector struct {
	controller controller.SpeedController
	router     *router.MessageRouter

	reading   *prometheus.Desc
	target    *prometheus.Desc
	control   *prometheus.Desc
	meanError *prometheus.Desc

	ticks        *prometheus.Desc
	skippedTicks *prometheus.Desc

	acceptedMessages *prometheus.Desc
	droppedMessages  *prometheus.Desc
}

func NewControllerCollector(speedController controller.SpeedController, messageRouter *router.MessageRouter) *ControllerCollector {
	return &ControllerCollector{
		controller: speedController,
		router:     messageRouter,
		reading: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "reading"),
			"Last ground speed reading used by the control loop",
			nil, nil,
		),
		target: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "target"),
			"Last target speed used by the control loop",
			nil, nil,
		),
		control: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "control"),
			"Last control value published by the control loop",
			nil, nil,
		),
		meanError: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "mean_error"),
			"Rolling mean of the control error",
			nil, nil,
		),
		ticks: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "ticks_total"),
			"Number of control ticks that published an actuation request",
			nil, nil,
		),
		skippedTicks: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "skipped_ticks_total"),
			"Number of control ticks skipped because an input was missing",
			nil, nil,
		),
		acceptedMessages: prometheus.NewDesc(prometheus.BuildFQName(namespace, routerSubsystem, "accepted_total"),
			"Number of accepted inbound messages",
			[]string{"kind"}, nil,
		),
		droppedMessages: prometheus.NewDesc(prometheus.BuildFQName(namespace, routerSubsystem, "dropped_total"),
			"Number of inbound messages dropped by the sender filter",
			[]string{"kind"}, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.reading
	ch <- collector.target
	ch <- collector.control
	ch <- collector.meanError
	ch <- collector.ticks
	ch <- collector.skippedTicks
	ch <- collector.acceptedMessages
	ch <- collector.droppedMessages
}

// Collect implements the required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := collector.controller.Snapshot()
	ch <- prometheus.MustNewConstMetric(collector.reading, prometheus.GaugeValue, snapshot.LastReading)
	ch <- prometheus.MustNewConstMetric(collector.target, prometheus.GaugeValue, snapshot.LastTarget)
	ch <- prometheus.MustNewConstMetric(collector.control, prometheus.GaugeValue, snapshot.LastControl)
	ch <- prometheus.MustNewConstMetric(collector.meanError, prometheus.GaugeValue, snapshot.MeanError)
	ch <- prometheus.MustNewConstMetric(collector.ticks, prometheus.CounterValue, float64(snapshot.Ticks))
	ch <- prometheus.MustNewConstMetric(collector.skippedTicks, prometheus.CounterValue, float64(snapshot.SkippedTicks))

	ch <- prometheus.MustNewConstMetric(collector.acceptedMessages, prometheus.CounterValue, float64(collector.router.AcceptedReadings()), "reading")
	ch <- prometheus.MustNewConstMetric(collector.acceptedMessages, prometheus.CounterValue, float64(collector.router.AcceptedTargets()), "target")
	ch <- prometheus.MustNewConstMetric(collector.droppedMessages, prometheus.CounterValue, float64(collector.router.DroppedReadings()), "reading")
	ch <- prometheus.MustNewConstMetric(collector.droppedMessages, prometheus.CounterValue, float64(collector.router.DroppedTargets()), "target")
}
