package render

// Geometry constants. Changing any of them changes every rendered diagram.
const (
	MinBoxInnerWidth = 4
	BoxHeight        = 3
	HeaderGap        = 1
	NoteRows         = 2

	RowSpacing                   = 2
	BlockTopRowExtra             = 1
	SectionTopRowExtra           = 1
	BlockEndRowExtra             = 1
	TopLevelBlockTransitionExtra = 1

	SelfMessageLoopDrop = 1
	SelfMessageStubLen  = 2
	// Self-loop stub as a fraction of the free width: num/den.
	SelfMessageStubNum = 1
	SelfMessageStubDen = 3

	ParticipantGap      = 2
	MessageLabelPadding = 4

	// FrameInset is the column inset per nesting level.
	FrameInset = 2
	// FrameLabelOffset is the distance from a frame edge down to the first
	// message arrow it encloses: one row for the message label.
	FrameLabelOffset = 2
)

// Glyphs.
const (
	glyphH        = '─'
	glyphV        = '│'
	glyphDash     = '╌'
	glyphTL       = '┌'
	glyphTR       = '┐'
	glyphBL       = '└'
	glyphBR       = '┘'
	glyphTeeDown  = '┬'
	glyphTeeRight = '├'
	glyphTeeLeft  = '┤'

	headSyncRight   = '▶'
	headSyncLeft    = '◀'
	headHollowRight = '▷'
	headHollowLeft  = '◁'
)
