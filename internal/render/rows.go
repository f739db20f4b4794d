package render

// resolveRows assigns every message row its y coordinate. Extra rows are
// inserted ahead of a row for each frame edge that must fit above it:
// block tops, section separators, the lower arm of a self-loop on the
// previous row, and the bottoms of blocks that closed on the previous row.
func resolveRows(l *layout) {
	n := len(l.rows)
	if n == 0 {
		return
	}
	blockStarts := make([]int, n)
	sectionStarts := make([]int, n)
	ends := make([]int, n)
	for _, bp := range l.blocks {
		blockStarts[bp.first]++
		ends[bp.last]++
		for _, sp := range bp.sections[1:] {
			sectionStarts[sp.first]++
		}
	}

	extra := 0
	for r := range l.rows {
		extra += blockStarts[r]*BlockTopRowExtra + sectionStarts[r]*SectionTopRowExtra
		if r > 0 {
			extra += l.selfDrop(r - 1)
			if e := ends[r-1]; e > 0 {
				if blockStarts[r]+sectionStarts[r] > 0 {
					extra += e * TopLevelBlockTransitionExtra
				} else {
					extra += e * BlockEndRowExtra
				}
			}
		}
		l.rows[r].y = l.topY + r*RowSpacing + extra
	}
}
