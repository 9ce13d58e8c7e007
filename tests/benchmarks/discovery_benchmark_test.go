package benchmarks_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/deepaucksharma/mcp-server-newrelic/internal/testutil"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/discovery"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/discovery/nrdb"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/visualization"
)

// BenchmarkSchemaDiscovery benchmarks schema discovery performance
func BenchmarkSchemaDiscovery(b *testing.B) {
	config := discovery.DefaultConfig()
	engine, err := discovery.NewEngine(config)
	if err != nil {
		b.Fatal(err)
	}

	mockClient := nrdb.NewMockClient()
	engine.SetNRDBClient(mockClient)

	ctx := context.Background()
	filter := discovery.DiscoveryFilter{
		MaxSchemas:     50,
		MinRecordCount: 100,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		schemas, err := engine.DiscoverSchemas(ctx, filter)
		if err != nil {
			b.Fatal(err)
		}
		if len(schemas) == 0 {
			b.Fatal("No schemas discovered")
		}
	}
}

// BenchmarkParallelDiscovery benchmarks parallel schema discovery
func BenchmarkParallelDiscovery(b *testing.B) {
	workerCounts := []int{1, 5, 10, 20}

	for _, workers := range workerCounts {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			config := discovery.DefaultConfig()
			config.Performance.WorkerPoolSize = workers

			engine, err := discovery.NewEngine(config)
			if err != nil {
				b.Fatal(err)
			}

			mockClient := nrdb.NewMockClient()
			engine.SetNRDBClient(mockClient)

			ctx := context.Background()
			filter := discovery.DiscoveryFilter{
				MaxSchemas:     100,
				MinRecordCount: 100,
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				schemas, err := engine.DiscoverSchemas(ctx, filter)
				if err != nil {
					b.Fatal(err)
				}
				if len(schemas) == 0 {
					b.Fatal("No schemas discovered")
				}
			}
		})
	}
}

// timeSeriesFrame builds a two-column ("timestamp", "value") Frame from a
// []interface{} of float64 readings, one per minute starting at epoch.
func timeSeriesFrame(values []interface{}) *frame.Frame {
	rows := make([]map[string]interface{}, len(values))
	base := time.Unix(0, 0).UTC()
	for i, v := range values {
		rows[i] = map[string]interface{}{
			"timestamp": base.Add(time.Duration(i) * time.Minute),
			"value":     v,
		}
	}
	return frame.NewFromRows([]string{"timestamp", "value"}, rows)
}

// BenchmarkPatternDetection benchmarks the Pattern Engine's full detector
// fan-out over time series data of increasing size.
func BenchmarkPatternDetection(b *testing.B) {
	dataSizes := []int{100, 1000, 10000}
	gen := testutil.NewTestDataGenerator(42)
	engine := patterns.NewDefaultEngine(nil)

	for _, size := range dataSizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			f := timeSeriesFrame(gen.GenerateTimeSeriesData(size, "trend"))
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				result := engine.Analyze(ctx, f, nil, &patterns.Context{})
				if len(result.Patterns) == 0 {
					b.Fatal("No patterns detected")
				}
			}
		})
	}
}

// BenchmarkCorrelationNetwork benchmarks the Correlation detector's network
// sub-feature, which replaces the teacher's standalone relationship miner
// for frame-shaped data (DESIGN.md).
func BenchmarkCorrelationNetwork(b *testing.B) {
	columnCounts := []int{3, 6, 10}
	gen := testutil.NewTestDataGenerator(42)
	detector := patterns.NewCorrelationDetector(patterns.DefaultDetectorConfig(), nil)

	for _, count := range columnCounts {
		b.Run(fmt.Sprintf("columns_%d", count), func(b *testing.B) {
			order := make([]string, count)
			data := make(map[string][]interface{}, count)
			for c := 0; c < count; c++ {
				name := fmt.Sprintf("metric_%d", c)
				order[c] = name
				data[name] = gen.GenerateTimeSeriesData(500, "trend")
			}
			f := frame.NewFromColumns(order, data)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				found := detector.Detect(f, order, &patterns.Context{})
				if len(found) == 0 {
					b.Fatal("No correlations found")
				}
			}
		})
	}
}

// BenchmarkShapeAnalysis benchmarks the ShapeAnalyzer's per-column profiling
// and data-quality scoring, which replaces the teacher's standalone quality
// assessor for frame-shaped data (DESIGN.md).
func BenchmarkShapeAnalysis(b *testing.B) {
	sampleSizes := []int{100, 1000, 10000}
	gen := testutil.NewTestDataGenerator(42)
	analyzer := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())

	for _, size := range sampleSizes {
		b.Run(fmt.Sprintf("samples_%d", size), func(b *testing.B) {
			f := timeSeriesFrame(gen.GenerateTimeSeriesData(size, "anomaly"))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				shape := analyzer.Analyze(f, nil)
				if shape.DataQualityScore == 0 {
					b.Fatal("Shape analysis failed")
				}
			}
		})
	}
}

// BenchmarkIntelligentDiscovery benchmarks intelligent discovery with hints
func BenchmarkIntelligentDiscovery(b *testing.B) {
	config := discovery.DefaultConfig()
	engine, err := discovery.NewEngine(config)
	if err != nil {
		b.Fatal(err)
	}

	mockClient := nrdb.NewMockClient()
	engine.SetNRDBClient(mockClient)

	ctx := context.Background()
	hints := discovery.DiscoveryHints{
		Keywords: []string{"transaction", "error", "performance"},
		Purpose:  "performance analysis",
		Domain:   "apm",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := engine.DiscoverWithIntelligence(ctx, hints)
		if err != nil {
			b.Fatal(err)
		}
		if len(result.Schemas) == 0 {
			b.Fatal("No schemas discovered")
		}
	}
}

// BenchmarkCachePerformance benchmarks cache hit/miss performance
func BenchmarkCachePerformance(b *testing.B) {
	config := discovery.DefaultConfig()
	config.Cache.Enabled = true

	engine, err := discovery.NewEngine(config)
	if err != nil {
		b.Fatal(err)
	}

	mockClient := nrdb.NewMockClient()
	engine.SetNRDBClient(mockClient)

	ctx := context.Background()
	filter := discovery.DiscoveryFilter{
		MaxSchemas:     10,
		MinRecordCount: 100,
	}

	// Prime the cache
	_, err = engine.DiscoverSchemas(ctx, filter)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("cache_hit", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			// Should hit cache
			schemas, err := engine.DiscoverSchemas(ctx, filter)
			if err != nil {
				b.Fatal(err)
			}
			if len(schemas) == 0 {
				b.Fatal("No schemas in cache")
			}
		}
	})

	b.Run("cache_miss", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			// Different filter to cause cache miss
			missFilter := discovery.DiscoveryFilter{
				MaxSchemas:     10,
				MinRecordCount: 100,
				EventTypes:     []string{fmt.Sprintf("Type%d", i)},
			}

			schemas, err := engine.DiscoverSchemas(ctx, missFilter)
			if err != nil {
				b.Fatal(err)
			}
			if len(schemas) == 0 {
				b.Fatal("No schemas discovered")
			}
		}
	})
}

// BenchmarkMemoryUsage benchmarks memory usage for large datasets
func BenchmarkMemoryUsage(b *testing.B) {
	schemaCounts := []int{100, 500, 1000}

	for _, count := range schemaCounts {
		b.Run(fmt.Sprintf("schemas_%d", count), func(b *testing.B) {
			config := discovery.DefaultConfig()
			engine, err := discovery.NewEngine(config)
			if err != nil {
				b.Fatal(err)
			}

			// Create a mock client that returns many schemas
			mockClient := &BenchmarkMockClient{schemaCount: count}
			engine.SetNRDBClient(mockClient)

			ctx := context.Background()
			filter := discovery.DiscoveryFilter{
				MaxSchemas:     count,
				MinRecordCount: 10,
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				schemas, err := engine.DiscoverSchemas(ctx, filter)
				if err != nil {
					b.Fatal(err)
				}
				if len(schemas) != count {
					b.Fatalf("Expected %d schemas, got %d", count, len(schemas))
				}
			}
		})
	}
}

// BenchmarkTimeSeriesPatternDetection benchmarks the TimeSeries detector
// alone against each synthetic pattern shape.
func BenchmarkTimeSeriesPatternDetection(b *testing.B) {
	patternNames := []string{"trend", "seasonal", "anomaly"}
	detector := patterns.NewTimeSeriesDetector(patterns.DefaultDetectorConfig(), nil)
	gen := testutil.NewTestDataGenerator(42)

	for _, pattern := range patternNames {
		b.Run(pattern, func(b *testing.B) {
			f := timeSeriesFrame(gen.GenerateTimeSeriesData(1000, pattern))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				detected := detector.Detect(f, nil, &patterns.Context{})
				if len(detected) == 0 {
					b.Fatal("No patterns detected")
				}
			}
		})
	}
}

// Custom mock client for benchmarking
type BenchmarkMockClient struct {
	schemaCount int
}

func (m *BenchmarkMockClient) Query(ctx context.Context, nrql string) (*discovery.QueryResult, error) {
	// Return minimal data for benchmarking
	return &discovery.QueryResult{
		Results: []map[string]interface{}{
			{"count": 10000},
		},
	}, nil
}

func (m *BenchmarkMockClient) QueryWithOptions(ctx context.Context, nrql string, opts discovery.QueryOptions) (*discovery.QueryResult, error) {
	return m.Query(ctx, nrql)
}

func (m *BenchmarkMockClient) GetEventTypes(ctx context.Context, filter discovery.EventTypeFilter) ([]string, error) {
	eventTypes := make([]string, m.schemaCount)
	for i := 0; i < m.schemaCount; i++ {
		eventTypes[i] = fmt.Sprintf("EventType%d", i)
	}
	return eventTypes, nil
}

func (m *BenchmarkMockClient) GetAccounts(ctx context.Context) ([]discovery.Account, error) {
	return []discovery.Account{{AccountID: "123456", Name: "Benchmark Account"}}, nil
}

// Benchmark results documentation
func TestPrintBenchmarkTargets(t *testing.T) {
	t.Skip("Run with -v to see benchmark targets")

	fmt.Println("Discovery Core Performance Targets:")
	fmt.Println("===================================")
	fmt.Println("Schema Discovery (50 schemas):")
	fmt.Println("  - Target: < 100ms")
	fmt.Println("  - With cache: < 10ms")
	fmt.Println("")
	fmt.Println("Pattern Detection (1000 points):")
	fmt.Println("  - Target: < 50ms")
	fmt.Println("")
	fmt.Println("Correlation Network (10 columns):")
	fmt.Println("  - Target: < 200ms")
	fmt.Println("")
	fmt.Println("Shape Analysis (1000 samples):")
	fmt.Println("  - Target: < 100ms")
	fmt.Println("")
	fmt.Println("Memory Usage (1000 schemas):")
	fmt.Println("  - Target: < 100MB")
	fmt.Println("")
	fmt.Println("Concurrent Discovery (10 workers):")
	fmt.Println("  - Target: Linear scaling up to CPU count")
}
