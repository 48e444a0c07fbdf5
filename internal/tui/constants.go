package tui

import "time"

// Layout
const (
	ModalWidthMargin       = 6  // request log and help modals: m.width - 6
	ModalHeightMargin      = 3  // m.height - 3
	ModalWidthMarginNarrow = 10 // inner viewport width
	ModalOverheadLines     = 6  // title, padding and border
	ModalFooterLines       = 2

	DialogMinWidth = 40
	DialogMaxWidth = 70

	FormLabelWidth = 18 // includes the required marker
	FormInputWidth = 40

	StatusMaxLength = 100
	StatusTimeout   = 5 * time.Second
)
