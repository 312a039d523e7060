package pathfind

// Result is the outcome of a search.
type Result int

const (
	// NoPath means no goal is reachable from any start.
	NoPath Result = iota
	// PartialPath means the expansion budget ran out. The path leads to the
	// expanded node that looked closest to a goal.
	PartialPath
	// PathFound means the path ends at a goal.
	PathFound
)

func (r Result) String() string {
	switch r {
	case NoPath:
		return "no_path"
	case PartialPath:
		return "partial_path"
	case PathFound:
		return "path_found"
	default:
		return "unknown"
	}
}
