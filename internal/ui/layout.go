package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the sidebar is hidden.
	LayoutCompactWidth = 90

	// LayoutWideWidth is the minimum width to show author and time in the header.
	LayoutWideWidth = 120
)

// Pane sizes in cells.
const (
	sidebarWidth  = 30
	headerHeight  = 1
	footerHeight  = 1
	columnStep    = 4
	wheelStep     = 3
	toastWidth    = 44
	summaryLines  = 3
	cardPadding   = 2
	minCardsWidth = 20
)

// Timing constants.
const (
	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = time.Second
)
