package cache

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// LinearizationKey identifies the linearization of root within the
	// hierarchy whose canonical hash is hierarchyHash.
	LinearizationKey(hierarchyHash, root string) string

	// ReportKey identifies the whole-hierarchy check report.
	ReportKey(hierarchyHash string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LinearizationKey returns "lin:<hash(hierarchyHash, root)>".
func (DefaultKeyer) LinearizationKey(hierarchyHash, root string) string {
	return hashKey("lin", hierarchyHash, root)
}

// ReportKey returns "report:<hierarchyHash>".
func (DefaultKeyer) ReportKey(hierarchyHash string) string {
	return "report:" + hierarchyHash
}
