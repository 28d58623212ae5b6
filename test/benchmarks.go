// Package test provides benchmarks and end-to-end tests running the sink with sample inputs
package test

import (
	"fmt"
	"net"
	"runtime"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/run"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/logger"
)

type benchmarkMetric struct {
	fmt string
	val float64
}

// RunBenchmarkSink benchmarks a sink by posting entries directly
func RunBenchmarkSink(inputPath string, outputPath string, repeat int, configFile string) {
	loader, loaderErr := run.NewLoaderFromConfigFile(configFile, "benchsink_")
	if loaderErr != nil {
		logger.Panic(loaderErr)
	}
	loader.Inputs = nil
	agt := startAgent(loader, newOutputOverride(outputPath, loader.Output.Value))

	entries := loadInputEntries(inputPath)
	costTracker := StartCostTracking()
	for i := 0; i < repeat; i++ {
		for _, entry := range entries {
			agt.Sink().Post(entry)
		}
	}
	logger.Info("stopping...")
	agt.StopAndWait()

	reportBenchmarkResult("BenchmarkSink", len(entries)*repeat, costTracker.Report(), agt.MetricFactory())
}

// RunBenchmarkAgent benchmarks a fully configured sink receiving entries from TCP input
func RunBenchmarkAgent(inputPath string, outputPath string, repeat int, configFile string) {
	loader, loaderErr := run.NewLoaderFromConfigFile(configFile, "benchagent_")
	if loaderErr != nil {
		logger.Panic(loaderErr)
	}
	agt := startAgent(loader, newOutputOverride(outputPath, loader.Output.Value))

	inputData, numRecords := loadInput(inputPath)
	costTracker := StartCostTracking()
	runBenchmarkInputSender(agt.Address(), inputData, repeat)
	time.Sleep(1 * time.Second)

	logger.Info("stopping...")
	agt.StopAndWait()

	reportBenchmarkResult("BenchmarkAgent", numRecords*repeat, costTracker.Report(), agt.MetricFactory())
}

func runBenchmarkInputSender(agentAddress string, inputData []byte, repeat int) {
	const frameSize = 1 * 1024 * 1024

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	conn, err := net.Dial("tcp", agentAddress)
	if err != nil {
		logger.Fatal("connect: ", err.Error())
	}

	frameRepeat := frameSize/len(inputData) + 1
	frame := make([]byte, 0, len(inputData)*frameRepeat)
	for i := 0; i < frameRepeat; i++ {
		frame = append(frame, inputData...)
	}

	numSent := int64(0)
	for remaining := repeat; remaining > 0; remaining -= frameRepeat {
		chunk := frame
		if remaining < frameRepeat {
			chunk = frame[:len(inputData)*remaining]
		}
		n, err := conn.Write(chunk)
		if err != nil {
			logger.Fatal("error sending: ", err.Error())
		}
		numSent += int64(n)
	}

	if err := conn.Close(); err != nil {
		logger.Fatal("close: ", err.Error())
	}
	logger.Infof("writer sent %d bytes", numSent)
}

func reportBenchmarkResult(title string, numEntries int, report CostReport, mfactory *base.MetricFactory) {
	metrics := []benchmarkMetric{
		{fmt: "%.0f entry/sec", val: float64(numEntries) / report.RealTime.Seconds()},
		{fmt: "%0.2f alloc/entry", val: float64(report.NumHeapAllocs) / float64(numEntries)},
		{fmt: "%0.2f%% user", val: 100.0 * report.UserTime.Seconds() / report.RealTime.Seconds()},
		{fmt: "%0.2f%% sys", val: 100.0 * report.SystemTime.Seconds() / report.RealTime.Seconds()},
		{fmt: "%0.2f%% gc", val: 100.0 * report.GCCPUFraction},
		{fmt: "%.02f sec", val: report.RealTime.Seconds()},
	}
	numSent := util.SumMetricValues(mfactory.AddOrGetCounterVec("sink_sent_entries_total", "", []string{"sink"}, nil))
	numBatches := util.SumMetricValues(mfactory.AddOrGetCounterVec("sink_sent_batches_total", "", []string{"sink"}, nil))
	numBytes := util.SumMetricValues(mfactory.AddOrGetCounterVec("sink_sent_bytes_total", "", []string{"sink"}, nil))
	numDropped := util.SumMetricValues(mfactory.AddOrGetCounterVec("sink_dropped_entries_total", "", []string{"sink", "reason"}, nil))
	if int(numSent)+int(numDropped) > numEntries {
		logger.Errorf("numbers of sent and dropped entries don't match: %d + %d, should be at most %d", int(numSent), int(numDropped), numEntries)
	}
	if numBatches > 0 {
		metrics = append(metrics, benchmarkMetric{fmt: "%.0f entry/batch", val: numSent / numBatches})
		metrics = append(metrics, benchmarkMetric{fmt: "%.0f KB/batch", val: numBytes / 1024.0 / numBatches})
	}
	metrics = append(metrics, benchmarkMetric{fmt: "%.0f dropped", val: numDropped})
	metrics = append(metrics, benchmarkMetric{fmt: "%.0f MB out", val: numBytes / 1048576})
	printBenchmarkMetrics(title, metrics)

	if dump, err := mfactory.DumpMetrics(false); err == nil {
		logger.Info(dump)
	}
}

func printBenchmarkMetrics(title string, metrics []benchmarkMetric) {
	sb := make([]byte, 0, 200)
	sb = append(sb, fmt.Sprintf("%s:", title)...)
	for _, m := range metrics {
		sb = append(sb, fmt.Sprintf("\t"+m.fmt, m.val)...)
	}
	fmt.Println(string(sb))
}
