package core

// Settings is the snapshot of user preferences the core consumes. It is
// assembled once by the caller; the core holds no listeners and is rebuilt
// from a fresh snapshot when preferences change.
type Settings struct {
	Units         UnitSystem
	PlotDateRange RangeKind
	DataEntryMode DataEntryMode
	CostRequired  bool
	Currency      CurrencyFormatter
}
