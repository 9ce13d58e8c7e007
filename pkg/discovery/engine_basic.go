package discovery

import (
	"context"
	"fmt"
	"time"
)

// BasicEngine provides a basic implementation of DiscoveryEngine
type BasicEngine struct {
	config   Config
	nrdb     NRDBClient
	cache    Cache
	started  bool
	health   HealthStatus
}

// NewBasicEngine creates a new basic discovery engine
func NewBasicEngine(config Config, nrdb NRDBClient) *BasicEngine {
	return &BasicEngine{
		config: config,
		nrdb:   nrdb,
		health: HealthStatus{
			Status:  "initializing",
			Version: "1.0.0",
		},
	}
}

// Start initializes the engine
func (e *BasicEngine) Start(ctx context.Context) error {
	if e.started {
		return fmt.Errorf("engine already started")
	}
	
	e.started = true
	e.health.Status = "healthy"
	e.health.Uptime = 0
	
	// Start health check updater
	go e.updateHealth(ctx)
	
	return nil
}

// Stop shuts down the engine
func (e *BasicEngine) Stop(ctx context.Context) error {
	if !e.started {
		return nil
	}
	
	e.started = false
	e.health.Status = "stopped"
	return nil
}

// Health returns the current health status
func (e *BasicEngine) Health() HealthStatus {
	return e.health
}

// DiscoverSchemas discovers event schemas
func (e *BasicEngine) DiscoverSchemas(ctx context.Context, filter DiscoveryFilter) ([]Schema, error) {
	if !e.started {
		return nil, fmt.Errorf("engine not started")
	}
	
	// Get event types from NRDB
	eventTypes, err := e.nrdb.GetEventTypes(ctx, EventTypeFilter{
		Pattern:        "*",
		MinRecordCount: filter.MinRecordCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get event types: %w", err)
	}
	
	// Filter based on patterns
	filteredTypes := filterEventTypes(eventTypes, filter)
	
	// Create basic schemas
	schemas := make([]Schema, 0, len(filteredTypes))
	for _, eventType := range filteredTypes {
		// Get a sample to determine schema
		query := fmt.Sprintf("SELECT * FROM `%s` LIMIT 1", eventType)
		result, err := e.nrdb.Query(ctx, query)
		if err != nil {
			continue // Skip on error
		}
		
		if len(result.Results) == 0 {
			continue
		}
		
		// Build schema from sample
		schema := buildSchemaFromSample(eventType, result.Results[0])
		schemas = append(schemas, schema)
	}
	
	return schemas, nil
}

// ProfileSchema provides detailed profiling of a schema
func (e *BasicEngine) ProfileSchema(ctx context.Context, eventType string, depth ProfileDepth) (*Schema, error) {
	if !e.started {
		return nil, fmt.Errorf("engine not started")
	}
	
	// Get sample data
	sampleSize := 100
	if depth == ProfileDepthFull {
		sampleSize = 1000
	}
	
	query := fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", eventType, sampleSize)
	result, err := e.nrdb.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema: %w", err)
	}
	
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no data found for event type: %s", eventType)
	}
	
	// Build detailed schema
	schema := buildSchemaFromSample(eventType, result.Results[0])
	
	// Add profiling data based on depth
	if depth != ProfileDepthBasic {
		schema.SampleCount = int64(len(result.Results))
		schema.LastAnalyzedAt = time.Now()
		
		// Get data volume estimate
		countQuery := fmt.Sprintf("SELECT count(*) FROM `%s` SINCE 1 day ago", eventType)
		countResult, err := e.nrdb.Query(ctx, countQuery)
		if err == nil && len(countResult.Results) > 0 {
			if count, ok := countResult.Results[0]["count"].(float64); ok {
				schema.DataVolume.TotalRecords = int64(count)
				schema.DataVolume.RecordsPerDay = float64(count)
			}
		}
	}
	
	return &schema, nil
}

// GetSamplingStrategy returns a sampling strategy for the event type
func (e *BasicEngine) GetSamplingStrategy(ctx context.Context, eventType string) (SamplingStrategy, error) {
	// Return a basic random sampling strategy
	return &randomSamplingStrategy{
		sampleRate: 0.1, // 10% sampling
	}, nil
}

// SampleData samples data from the specified event type
func (e *BasicEngine) SampleData(ctx context.Context, params SamplingParams) (*DataSample, error) {
	if !e.started {
		return nil, fmt.Errorf("engine not started")
	}
	
	query := fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", params.EventType, params.MaxSamples)
	if params.Filter != "" {
		query = fmt.Sprintf("SELECT * FROM `%s` WHERE %s LIMIT %d", 
			params.EventType, params.Filter, params.MaxSamples)
	}
	
	result, err := e.nrdb.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample data: %w", err)
	}
	
	return &DataSample{
		EventType:    params.EventType,
		Records:      result.Results,
		SampleSize:   len(result.Results),
		SamplingRate: float64(len(result.Results)) / float64(params.MaxSamples),
		Strategy:     "random",
		TimeRange:    params.TimeRange,
	}, nil
}

// AssessQuality assesses the quality of a schema
func (e *BasicEngine) AssessQuality(ctx context.Context, schemaName string) (*QualityReport, error) {
	if !e.started {
		return nil, fmt.Errorf("engine not started")
	}
	
	// Get sample data
	sample, err := e.SampleData(ctx, SamplingParams{
		EventType:  schemaName,
		MaxSamples: 1000,
	})
	if err != nil {
		return nil, err
	}
	
	// Basic quality assessment
	report := &QualityReport{
		SchemaName:   schemaName,
		Timestamp:    time.Now(),
		OverallScore: 0.8, // Default score
		Dimensions: QualityDimensions{
			Completeness: DimensionScore{Score: 0.9, Details: "Most fields populated"},
			Consistency:  DimensionScore{Score: 0.8, Details: "Data types consistent"},
			Timeliness:   DimensionScore{Score: 0.85, Details: "Recent data available"},
			Uniqueness:   DimensionScore{Score: 0.75, Details: "Some duplicate values"},
			Validity:     DimensionScore{Score: 0.8, Details: "Values within expected ranges"},
		},
		Issues:          []QualityIssue{},
		Recommendations: []QualityRecommendation{},
	}
	
	// Check for null values
	nullCount := 0
	for _, record := range sample.Records {
		for _, value := range record {
			if value == nil {
				nullCount++
			}
		}
	}
	
	if nullCount > 0 {
		report.Issues = append(report.Issues, QualityIssue{
			Severity:    "low",
			Type:        "completeness",
			Description: fmt.Sprintf("Found %d null values in sample", nullCount),
		})
	}
	
	return report, nil
}

// FindRelationships finds relationships between schemas
func (e *BasicEngine) FindRelationships(ctx context.Context, schemas []Schema) ([]Relationship, error) {
	if !e.started {
		return nil, fmt.Errorf("engine not started")
	}
	
	relationships := []Relationship{}
	
	// Simple relationship detection based on common field names
	for i, schema1 := range schemas {
		for j := i + 1; j < len(schemas); j++ {
			schema2 := schemas[j]
			
			// Check for common attributes
			for _, attr1 := range schema1.Attributes {
				for _, attr2 := range schema2.Attributes {
					if attr1.Name == attr2.Name && attr1.DataType == attr2.DataType {
						// Potential relationship found
						relationships = append(relationships, Relationship{
							ID:              fmt.Sprintf("%s-%s-%s", schema1.Name, schema2.Name, attr1.Name),
							Type:            RelationTypeJoin,
							SourceSchema:    schema1.Name,
							TargetSchema:    schema2.Name,
							SourceAttribute: attr1.Name,
							TargetAttribute: attr2.Name,
							Confidence:      0.7,
							Evidence: []Evidence{
								{
									Type:        "field_match",
									Value:       attr1.Name,
									Confidence:  0.7,
									Description: "Common field name and type",
								},
							},
						})
					}
				}
			}
		}
	}
	
	return relationships, nil
}

// DiscoverWithIntelligence is not implemented in basic engine
func (e *BasicEngine) DiscoverWithIntelligence(ctx context.Context, hints DiscoveryHints) (*DiscoveryResult, error) {
	return nil, fmt.Errorf("intelligent discovery not available in basic engine")
}

// Helper functions

func filterEventTypes(eventTypes []string, filter DiscoveryFilter) []string {
	filtered := []string{}
	
	for _, eventType := range eventTypes {
		// Check if matches filter
		if len(filter.EventTypes) > 0 {
			found := false
			for _, ft := range filter.EventTypes {
				if ft == eventType {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		
		// Check include patterns
		if len(filter.IncludePatterns) > 0 {
			matches := false
			for _, pattern := range filter.IncludePatterns {
				if matchesPattern(eventType, pattern) {
					matches = true
					break
				}
			}
			if !matches {
				continue
			}
		}
		
		// Check exclude patterns
		excluded := false
		for _, pattern := range filter.ExcludePatterns {
			if matchesPattern(eventType, pattern) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		
		filtered = append(filtered, eventType)
		
		// Check max schemas
		if filter.MaxSchemas > 0 && len(filtered) >= filter.MaxSchemas {
			break
		}
	}
	
	return filtered
}

func buildSchemaFromSample(eventType string, sample map[string]interface{}) Schema {
	schema := Schema{
		Name:           eventType,
		EventType:      eventType,
		Attributes:     []Attribute{},
		DiscoveredAt:   time.Now(),
		LastAnalyzedAt: time.Now(),
		DataVolume:     DataVolumeProfile{},
		Quality:        QualityMetrics{OverallScore: 0.8},
	}
	
	// Build attributes from sample
	for name, value := range sample {
		attr := Attribute{
			Name:     name,
			DataType: basicInferDataType(value),
		}
		schema.Attributes = append(schema.Attributes, attr)
	}
	
	return schema
}

func basicInferDataType(value interface{}) DataType {
	switch value.(type) {
	case string:
		return DataTypeString
	case float64, int, int64:
		return DataTypeNumeric
	case bool:
		return DataTypeBoolean
	case time.Time:
		return DataTypeTimestamp
	default:
		return DataTypeString
	}
}

func (e *BasicEngine) updateHealth(ctx context.Context) {
	startTime := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.health.Uptime = time.Since(startTime)
			e.health.Components = map[string]ComponentHealth{
				"nrdb": {
					Status:    "healthy",
					LastCheck: time.Now(),
				},
				"cache": {
					Status:    "healthy",
					LastCheck: time.Now(),
				},
			}
		}
	}
}

// randomSamplingStrategy implements basic random sampling
type randomSamplingStrategy struct {
	sampleRate float64
}

func (s *randomSamplingStrategy) Sample(ctx context.Context, params SamplingParams) (*DataSample, error) {
	// This would be implemented by the engine
	return nil, fmt.Errorf("sampling should be done through engine")
}

func (s *randomSamplingStrategy) EstimateSampleSize(totalRecords int64) int64 {
	return int64(float64(totalRecords) * s.sampleRate)
}

func (s *randomSamplingStrategy) GetStrategyName() string {
	return "random"
}