package config

// LineageConfig is the top-level YAML structure.
type LineageConfig struct {
	Version  string     `yaml:"version" validate:"required"`
	Engine   EngineConf `yaml:"engine"`
	Lineages []Lineage  `yaml:"lineages" validate:"dive"`
}

// EngineConf holds tunable query engine settings.
type EngineConf struct {
	QueryWorkers   int  `yaml:"query_workers" validate:"gte=1"`
	QueueDepth     int  `yaml:"queue_depth" validate:"gte=1"`
	QueryTimeoutMs int  `yaml:"query_timeout_ms" validate:"gte=1"`
	YearThreshold  *int `yaml:"year_threshold"` // nil means the default; 0 is a valid year
}

// Threshold returns the filter op's default year, falling back to 1980.
func (e EngineConf) Threshold() int {
	if e.YearThreshold == nil {
		return defaultYearThreshold
	}
	return *e.YearThreshold
}

// Lineage declares one tree, starting from its original vampire.
type Lineage struct {
	ID          string     `yaml:"id" validate:"required"`
	Description string     `yaml:"description"`
	Enabled     bool       `yaml:"enabled"`
	Root        VampireDef `yaml:"root"`
}

// VampireDef is a vampire and, nested, everyone it created.
// Offspring order is creation order.
type VampireDef struct {
	Name          string       `yaml:"name" validate:"required"`
	YearConverted int          `yaml:"year_converted"`
	Offspring     []VampireDef `yaml:"offspring,omitempty" validate:"dive"`
}
