package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// SourceKind represents where a repository snapshot is fetched from.
	SourceKind string

	// EntryKind is the kind of a tree entry.
	EntryKind string

	// FindingStatus classifies a single observation.
	FindingStatus string
)

// All output modes supported.
const (
	TextOut       OutputMode = "text" // default
	JSONOut       OutputMode = "json"
	YAMLOut       OutputMode = "yaml"
	CSVOut        OutputMode = "csv"
	MarkdownOut   OutputMode = "markdown"
	ParquetOut    OutputMode = "parquet"
	PrometheusOut OutputMode = "prometheus"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All snapshot sources supported.
const (
	GitHubSource SourceKind = "github"
	LocalSource  SourceKind = "local"
)

// Tree entry kinds, mirroring git object types.
const (
	BlobEntry EntryKind = "blob"
	TreeKind  EntryKind = "tree"
)

// Finding statuses.
const (
	PositiveStatus FindingStatus = "positive"
	WarningStatus  FindingStatus = "warning"
	MissingStatus  FindingStatus = "missing"
)

// Analyzer names. These double as configuration keys after normalization.
const (
	DocumentationName = "Documentation"
	TestsName         = "Tests"
	CICDName          = "CI/CD"
	DependenciesName  = "Dependencies"
	BusFactorName     = "Bus Factor"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:       {},
	JSONOut:       {},
	YAMLOut:       {},
	CSVOut:        {},
	MarkdownOut:   {},
	ParquetOut:    {},
	PrometheusOut: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSourceKinds lists all valid snapshot sources.
var ValidSourceKinds = map[SourceKind]struct{}{
	GitHubSource: {},
	LocalSource:  {},
}

// DefaultWeights holds the built-in weight of every analyzer.
// The values sum to 1.0 so that the overall score stays on the 0-100 scale.
var DefaultWeights = map[string]float64{
	DocumentationName: 0.20,
	TestsName:         0.25,
	CICDName:          0.20,
	DependenciesName:  0.20,
	BusFactorName:     0.15,
}

// AnalyzerOrder is the fixed registry order used for output and aggregation.
var AnalyzerOrder = []string{DocumentationName, TestsName, CICDName, DependenciesName, BusFactorName}
