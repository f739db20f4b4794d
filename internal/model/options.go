package model

// RenderOptions is the immutable per-call render configuration.
type RenderOptions struct {
	// ReserveNotes leaves blank lifeline rows under the participant boxes
	// for notes painted by a later pass.
	ReserveNotes bool `json:"reserve_notes" yaml:"reserve_notes"`
	// PrefixLabels prepends a direction marker to message labels so a
	// presentation layer can restyle it.
	PrefixLabels bool `json:"prefix_labels" yaml:"prefix_labels"`
	// FlowchartColGap is an extra column gap used only by flowchart layout.
	FlowchartColGap int `json:"flowchart_col_gap" yaml:"flowchart_col_gap"`
}
