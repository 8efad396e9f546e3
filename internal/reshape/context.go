package reshape

// Context is the group label in effect for a data row. Valid is false when
// no group header has been seen yet in the row's partition.
type Context struct {
	Value string
	Valid bool
}

// TaggedRow is the input to FillContext: a cleaned label, its tag and the
// partition (year) the row belongs to.
type TaggedRow struct {
	Partition string
	Label     string
	Tag       LabelTag
}

// FillContext forward-fills group headers onto data rows in original order.
// Each partition keeps its own last-seen header, so nothing carries across
// years even when partitions interleave. Only DataRow entries receive a
// context; header and noise rows get the zero Context.
func FillContext(rows []TaggedRow) []Context {
	out := make([]Context, len(rows))
	lastSeen := make(map[string]string)

	for i, r := range rows {
		switch r.Tag {
		case GroupHeader:
			lastSeen[r.Partition] = r.Label
		case DataRow:
			if v, ok := lastSeen[r.Partition]; ok {
				out[i] = Context{Value: v, Valid: true}
			}
		}
	}

	return out
}
