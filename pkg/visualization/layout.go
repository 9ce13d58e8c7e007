package visualization

import "math"

// LayoutStrategy is a dashboard placement algorithm.
type LayoutStrategy string

const (
	LayoutGrid       LayoutStrategy = "grid"
	LayoutMasonry    LayoutStrategy = "masonry"
	LayoutFlow       LayoutStrategy = "flow"
	LayoutFixed      LayoutStrategy = "fixed"
	LayoutResponsive LayoutStrategy = "responsive"
)

// WidgetSize is a (width, height) pair in grid units.
type WidgetSize struct {
	Width, Height int
}

var (
	SizeSmall     = WidgetSize{1, 1}
	SizeMedium    = WidgetSize{2, 1}
	SizeLarge     = WidgetSize{2, 2}
	SizeWide      = WidgetSize{3, 1}
	SizeTall      = WidgetSize{1, 2}
	SizeXLarge    = WidgetSize{3, 2}
	SizeFullWidth = WidgetSize{4, 1}
)

func (s WidgetSize) Area() int { return s.Width * s.Height }

// WidgetPriority ranks widgets for placement order; higher places first.
type WidgetPriority int

const (
	PriorityOptional WidgetPriority = 1
	PriorityLow      WidgetPriority = 2
	PriorityMedium   WidgetPriority = 3
	PriorityHigh     WidgetPriority = 4
	PriorityCritical WidgetPriority = 5
)

// Widget is a dashboard widget awaiting placement.
type Widget struct {
	ID             string
	Title          string
	ChartType      ChartType
	DataQuery      string
	Size           WidgetSize
	Position       *GridPosition
	Priority       WidgetPriority
	RelatedWidgets []string
	ColorScheme    string
	RefreshInterval int
	MinSize        *WidgetSize
	MaxSize        *WidgetSize
	FixedPosition  bool
}

// GridPosition is a zero-based (x, y) grid-unit coordinate.
type GridPosition struct{ X, Y int }

// WidgetPlacement is a widget's resolved position and size within a layout.
type WidgetPlacement struct {
	WidgetID string
	Position GridPosition
	Size     WidgetSize
}

// DashboardLayout is a complete, scored dashboard arrangement.
type DashboardLayout struct {
	Strategy    LayoutStrategy
	GridColumns int
	GridRows    int
	Placements  []WidgetPlacement

	SpaceUtilization float64
	VisualBalance    float64
	RelationshipScore float64
	OverallScore     float64

	Iterations int
}

// LayoutConstraints bounds the optimizer's search space.
type LayoutConstraints struct {
	MaxColumns    int
	MaxRows       int
	MinWidgetWidth  int
	MinWidgetHeight int

	MaintainAspectRatio bool
	GroupRelatedWidgets bool

	MaxWidgetsPerRow int
	MaxTotalWidgets  int

	MobileFriendly bool
	TabletFriendly bool
}

// DefaultLayoutConstraints matches the Python original's dataclass defaults.
func DefaultLayoutConstraints() LayoutConstraints {
	return LayoutConstraints{
		MaxColumns: 4, MaxRows: 20,
		MinWidgetWidth: 1, MinWidgetHeight: 1,
		MaintainAspectRatio: true, GroupRelatedWidgets: true,
		MaxWidgetsPerRow: 4, MaxTotalWidgets: 20,
		MobileFriendly: false, TabletFriendly: true,
	}
}

// LayoutOptimizerConfig configures a LayoutOptimizer.
type LayoutOptimizerConfig struct {
	DefaultGridColumns   int
	OptimizationIterations int
}

// DefaultLayoutOptimizerConfig matches the Python original's config defaults.
func DefaultLayoutOptimizerConfig() LayoutOptimizerConfig {
	return LayoutOptimizerConfig{DefaultGridColumns: 4, OptimizationIterations: 100}
}

// LayoutOptimizer arranges widgets into a scored DashboardLayout.
//
// Grounded on original_source/intelligence/visualization/layout_optimizer.py.
type LayoutOptimizer struct {
	cfg LayoutOptimizerConfig
}

// NewLayoutOptimizer constructs a LayoutOptimizer.
func NewLayoutOptimizer(cfg LayoutOptimizerConfig) *LayoutOptimizer {
	if cfg.DefaultGridColumns == 0 {
		cfg.DefaultGridColumns = 4
	}
	if cfg.OptimizationIterations == 0 {
		cfg.OptimizationIterations = 100
	}
	return &LayoutOptimizer{cfg: cfg}
}

var sizeRecommendations = map[ChartType]WidgetSize{
	ChartLine:           SizeLarge,
	ChartTimeseriesLine: SizeLarge,
	ChartArea:           SizeLarge,
	ChartBar:            SizeMedium,
	ChartPie:            SizeMedium,
	ChartBillboard:      SizeSmall,
	ChartTable:          SizeWide,
	ChartHeatmap:        SizeLarge,
	ChartScatter:        SizeLarge,
	ChartHistogram:      SizeMedium,
	ChartGauge:          SizeSmall,
	ChartSparkline:      SizeSmall,
}

// Optimize arranges widgets using strategy, subject to constraints, and
// scores the result.
func (o *LayoutOptimizer) Optimize(widgets []Widget, constraints LayoutConstraints, strategy LayoutStrategy) DashboardLayout {
	if len(widgets) == 0 {
		return o.emptyLayout(strategy)
	}

	sorted := make([]Widget, len(widgets))
	copy(sorted, widgets)
	sortWidgetsByPriorityDesc(sorted)

	var layout DashboardLayout
	switch strategy {
	case LayoutMasonry:
		layout = o.optimizeMasonry(sorted, constraints)
	case LayoutFlow:
		layout = o.optimizeFlow(sorted, constraints)
	case LayoutResponsive:
		layout = o.optimizeResponsive(sorted, constraints)
	case LayoutFixed:
		layout = o.createFixed(sorted, constraints)
	default:
		layout = o.optimizeGrid(sorted, constraints)
	}

	o.calculateMetrics(&layout, widgets)
	return layout
}

func sortWidgetsByPriorityDesc(widgets []Widget) {
	for i := 1; i < len(widgets); i++ {
		j := i
		for j > 0 && widgets[j-1].Priority < widgets[j].Priority {
			widgets[j-1], widgets[j] = widgets[j], widgets[j-1]
			j--
		}
	}
}

type occupancyGrid struct {
	rows, cols int
	cells      [][]bool
}

func newOccupancyGrid(rows, cols int) *occupancyGrid {
	cells := make([][]bool, rows)
	for i := range cells {
		cells[i] = make([]bool, cols)
	}
	return &occupancyGrid{rows: rows, cols: cols, cells: cells}
}

func (g *occupancyGrid) mark(x, y, w, h int) {
	for row := y; row < y+h && row < g.rows; row++ {
		for col := x; col < x+w && col < g.cols; col++ {
			g.cells[row][col] = true
		}
	}
}

func (g *occupancyGrid) available(x, y, w, h int) bool {
	if x+w > g.cols || y+h > g.rows {
		return false
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if g.cells[row][col] {
				return false
			}
		}
	}
	return true
}

func (g *occupancyGrid) usedRows() int {
	for row := g.rows - 1; row >= 0; row-- {
		for _, occupied := range g.cells[row] {
			if occupied {
				return row + 1
			}
		}
	}
	return 0
}

func (o *LayoutOptimizer) optimizeGrid(widgets []Widget, constraints LayoutConstraints) DashboardLayout {
	gridCols := minInt(o.cfg.DefaultGridColumns, constraints.MaxColumns)
	layout := DashboardLayout{Strategy: LayoutGrid, GridColumns: gridCols}

	grid := newOccupancyGrid(constraints.MaxRows, gridCols)
	currentRow := 0

	for _, w := range widgets {
		placement := o.findBestGridPosition(w, grid, currentRow, constraints)
		if placement == nil {
			continue
		}
		grid.mark(placement.Position.X, placement.Position.Y, placement.Size.Width, placement.Size.Height)
		layout.Placements = append(layout.Placements, *placement)
		currentRow = maxInt(currentRow, placement.Position.Y)
	}

	layout.GridRows = grid.usedRows()
	return layout
}

func (o *LayoutOptimizer) optimizeMasonry(widgets []Widget, constraints LayoutConstraints) DashboardLayout {
	gridCols := minInt(o.cfg.DefaultGridColumns, constraints.MaxColumns)
	layout := DashboardLayout{Strategy: LayoutMasonry, GridColumns: gridCols}

	columnHeights := make([]int, gridCols)

	for _, w := range widgets {
		size := adjustSizeForMasonry(w, gridCols)

		var x, y int
		if size.Width == 1 {
			minCol := 0
			for c := 1; c < gridCols; c++ {
				if columnHeights[c] < columnHeights[minCol] {
					minCol = c
				}
			}
			x, y = minCol, columnHeights[minCol]
		} else {
			bestX, bestHeight := 0, math.MaxInt32
			for start := 0; start <= gridCols-size.Width; start++ {
				maxH := 0
				for c := start; c < start+size.Width; c++ {
					if columnHeights[c] > maxH {
						maxH = columnHeights[c]
					}
				}
				if maxH < bestHeight {
					bestHeight, bestX = maxH, start
				}
			}
			x, y = bestX, bestHeight
		}

		layout.Placements = append(layout.Placements, WidgetPlacement{
			WidgetID: w.ID, Position: GridPosition{X: x, Y: y}, Size: size,
		})
		for c := x; c < x+size.Width; c++ {
			columnHeights[c] = y + size.Height
		}
	}

	maxHeight := 0
	for _, h := range columnHeights {
		if h > maxHeight {
			maxHeight = h
		}
	}
	layout.GridRows = maxHeight
	return layout
}

func (o *LayoutOptimizer) optimizeFlow(widgets []Widget, constraints LayoutConstraints) DashboardLayout {
	gridCols := minInt(o.cfg.DefaultGridColumns, constraints.MaxColumns)
	layout := DashboardLayout{Strategy: LayoutFlow, GridColumns: gridCols}

	x, y, rowHeight := 0, 0, 0
	for _, w := range widgets {
		size := o.optimalWidgetSize(w, constraints)
		if x+size.Width > gridCols {
			x = 0
			y += rowHeight
			rowHeight = 0
		}
		layout.Placements = append(layout.Placements, WidgetPlacement{
			WidgetID: w.ID, Position: GridPosition{X: x, Y: y}, Size: size,
		})
		x += size.Width
		rowHeight = maxInt(rowHeight, size.Height)
	}
	layout.GridRows = y + rowHeight
	return layout
}

func (o *LayoutOptimizer) optimizeResponsive(widgets []Widget, constraints LayoutConstraints) DashboardLayout {
	layout := o.optimizeGrid(widgets, constraints)
	layout.Strategy = LayoutResponsive

	if constraints.MobileFriendly {
		applyMobileAdjustments(&layout)
	} else if constraints.TabletFriendly {
		applyTabletAdjustments(&layout)
	}
	return layout
}

func (o *LayoutOptimizer) createFixed(widgets []Widget, constraints LayoutConstraints) DashboardLayout {
	gridCols := minInt(o.cfg.DefaultGridColumns, constraints.MaxColumns)
	layout := DashboardLayout{Strategy: LayoutFixed, GridColumns: gridCols}

	var fixed, floating []Widget
	for _, w := range widgets {
		if w.FixedPosition && w.Position != nil {
			fixed = append(fixed, w)
		} else {
			floating = append(floating, w)
		}
	}

	for _, w := range fixed {
		layout.Placements = append(layout.Placements, WidgetPlacement{
			WidgetID: w.ID, Position: *w.Position, Size: w.Size,
		})
	}

	grid := newOccupancyGrid(constraints.MaxRows, gridCols)
	for _, p := range layout.Placements {
		grid.mark(p.Position.X, p.Position.Y, p.Size.Width, p.Size.Height)
	}

	for _, w := range floating {
		placement := o.findBestGridPosition(w, grid, 0, constraints)
		if placement == nil {
			continue
		}
		grid.mark(placement.Position.X, placement.Position.Y, placement.Size.Width, placement.Size.Height)
		layout.Placements = append(layout.Placements, *placement)
	}

	layout.GridRows = grid.usedRows()
	return layout
}

func (o *LayoutOptimizer) findBestGridPosition(w Widget, grid *occupancyGrid, startRow int, constraints LayoutConstraints) *WidgetPlacement {
	size := o.optimalWidgetSize(w, constraints)
	for y := startRow; y <= grid.rows-size.Height; y++ {
		for x := 0; x <= grid.cols-size.Width; x++ {
			if grid.available(x, y, size.Width, size.Height) {
				return &WidgetPlacement{WidgetID: w.ID, Position: GridPosition{X: x, Y: y}, Size: size}
			}
		}
	}
	return nil
}

func (o *LayoutOptimizer) optimalWidgetSize(w Widget, constraints LayoutConstraints) WidgetSize {
	if w.Size != (WidgetSize{}) {
		return w.Size
	}

	recommended, ok := sizeRecommendations[w.ChartType]
	if !ok {
		recommended = SizeMedium
	}

	if w.MinSize != nil && recommended.Area() < w.MinSize.Area() {
		recommended = *w.MinSize
	}
	if w.MaxSize != nil && recommended.Area() > w.MaxSize.Area() {
		recommended = *w.MaxSize
	}
	return recommended
}

func adjustSizeForMasonry(w Widget, gridCols int) WidgetSize {
	switch gridCols {
	case 4:
		switch w.ChartType {
		case ChartTable, ChartHeatmap:
			return SizeWide
		case ChartBillboard, ChartGauge:
			return SizeSmall
		default:
			return SizeMedium
		}
	case 3:
		if w.ChartType == ChartTable {
			return SizeWide
		}
		return SizeSmall
	default:
		return SizeSmall
	}
}

func applyMobileAdjustments(layout *DashboardLayout) {
	layout.GridColumns = 1
	y := 0
	for i := range layout.Placements {
		p := &layout.Placements[i]
		if p.Size.Width > 1 {
			p.Size = SizeSmall
		}
		p.Position = GridPosition{X: 0, Y: y}
		y += p.Size.Height
	}
	layout.GridRows = y
}

func applyTabletAdjustments(layout *DashboardLayout) {
	layout.GridColumns = 2
	for i := range layout.Placements {
		if layout.Placements[i].Size.Width > 2 {
			layout.Placements[i].Size = SizeMedium
		}
	}
}

func (o *LayoutOptimizer) calculateMetrics(layout *DashboardLayout, widgets []Widget) {
	if len(layout.Placements) == 0 {
		return
	}

	widgetByID := make(map[string]Widget, len(widgets))
	for _, w := range widgets {
		widgetByID[w.ID] = w
	}

	totalCells := layout.GridColumns * layout.GridRows
	usedCells := 0
	for _, p := range layout.Placements {
		usedCells += p.Size.Area()
	}
	layout.SpaceUtilization = float64(usedCells) / float64(maxInt(1, totalCells))

	layout.VisualBalance = calculateVisualBalance(*layout)
	layout.RelationshipScore = calculateRelationshipScore(*layout, widgetByID)
	layout.OverallScore = 0.3*layout.SpaceUtilization + 0.3*layout.VisualBalance + 0.4*layout.RelationshipScore
}

func calculateVisualBalance(layout DashboardLayout) float64 {
	if len(layout.Placements) == 0 {
		return 0
	}

	var weightedX, weightedY, totalWeight float64
	for _, p := range layout.Placements {
		cx := float64(p.Position.X) + float64(p.Size.Width)/2
		cy := float64(p.Position.Y) + float64(p.Size.Height)/2
		weight := float64(p.Size.Area())
		weightedX += cx * weight
		weightedY += cy * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}

	comX, comY := weightedX/totalWeight, weightedY/totalWeight
	centerX, centerY := float64(layout.GridColumns)/2, float64(layout.GridRows)/2

	distance := math.Sqrt(math.Pow(comX-centerX, 2) + math.Pow(comY-centerY, 2))
	maxDistance := math.Sqrt(centerX*centerX + centerY*centerY)
	if maxDistance == 0 {
		return 1.0
	}
	return 1 - distance/maxDistance
}

func calculateRelationshipScore(layout DashboardLayout, widgetByID map[string]Widget) float64 {
	if len(layout.Placements) == 0 {
		return 0
	}

	positions := make(map[string]GridPosition, len(layout.Placements))
	for _, p := range layout.Placements {
		positions[p.WidgetID] = p.Position
	}

	total, good := 0, 0
	for _, p := range layout.Placements {
		w, ok := widgetByID[p.WidgetID]
		if !ok || len(w.RelatedWidgets) == 0 {
			continue
		}
		pos := positions[w.ID]
		for _, relatedID := range w.RelatedWidgets {
			relatedPos, ok := positions[relatedID]
			if !ok {
				continue
			}
			total++
			distance := absInt(pos.X-relatedPos.X) + absInt(pos.Y-relatedPos.Y)
			if distance <= 2 {
				good++
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(good) / float64(total)
}

func (o *LayoutOptimizer) emptyLayout(strategy LayoutStrategy) DashboardLayout {
	return DashboardLayout{Strategy: strategy, GridColumns: o.cfg.DefaultGridColumns}
}

// SuggestImprovements proposes human-readable fixes for a scored layout.
func (o *LayoutOptimizer) SuggestImprovements(layout DashboardLayout) []string {
	var suggestions []string

	switch {
	case layout.SpaceUtilization < 0.6:
		suggestions = append(suggestions, "Consider using larger widget sizes to better utilize space")
	case layout.SpaceUtilization > 0.9:
		suggestions = append(suggestions, "Layout may be too dense - consider spacing widgets more")
	}

	if layout.VisualBalance < 0.7 {
		suggestions = append(suggestions, "Layout appears unbalanced - try distributing widgets more evenly")
	}

	if layout.RelationshipScore < 0.5 {
		suggestions = append(suggestions, "Related widgets are far apart - consider grouping them")
	}

	if layout.GridRows > 10 {
		suggestions = append(suggestions, "Dashboard is very tall - consider using wider widgets or multiple pages")
	}

	if layout.Strategy == LayoutGrid && layout.SpaceUtilization < 0.7 {
		suggestions = append(suggestions, "Consider using masonry layout for better space utilization")
	}

	return suggestions
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
