package chart

// Chart types understood by renderers.
const (
	TypeBar        = "bar"
	TypeGroupedBar = "grouped_bar"
	TypeHistogram  = "histogram"
)

// Spec is a render-ready chart description.
type Spec struct {
	Name       string   `json:"name" yaml:"name"`
	ChartType  string   `json:"chart_type" yaml:"chart_type"`
	Title      string   `json:"title" yaml:"title"`
	Caption    string   `json:"caption,omitempty" yaml:"caption,omitempty"`
	XAxis      string   `json:"x_axis,omitempty" yaml:"x_axis,omitempty"`
	YAxis      string   `json:"y_axis,omitempty" yaml:"y_axis,omitempty"`
	Series     []Series `json:"series" yaml:"series"`
	ShowLegend bool     `json:"show_legend" yaml:"show_legend"`
}

// Series is one named sequence of points.
type Series struct {
	Name  string  `json:"name" yaml:"name"`
	Data  []Point `json:"data" yaml:"data"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// Point is a labelled value.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Labels returns the point labels of the first series.
func (s Spec) Labels() []string {
	if len(s.Series) == 0 {
		return nil
	}
	out := make([]string, len(s.Series[0].Data))
	for i, p := range s.Series[0].Data {
		out[i] = p.Label
	}
	return out
}

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

const skyBlue = "#87CEEB"
