package catalog

import "strconv"

// ButtonKind identifies an element of the pagination control.
type ButtonKind int

const (
	ButtonPrevious ButtonKind = iota
	ButtonPage
	ButtonBreak
	ButtonNext
)

// Button is one element of the rendered pagination control.
// Target is the zero-based page index selecting the button leads to.
type Button struct {
	Kind     ButtonKind
	Label    string
	Target   int
	Active   bool
	Disabled bool
}

// Options shapes the pagination control.
type Options struct {
	// PageRange is how many pages are shown around the selected one.
	PageRange int
	// Margin is how many pages are always shown at each end.
	Margin        int
	PreviousLabel string
	NextLabel     string
	BreakLabel    string
}

// DefaultOptions mirrors the catalog's web control: five pages around the
// selection, two at each edge.
func DefaultOptions() Options {
	return Options{
		PageRange:     5,
		Margin:        2,
		PreviousLabel: "< previous",
		NextLabel:     "next >",
		BreakLabel:    "...",
	}
}

// Pages lays out the pagination control for the zero-based selected page.
// It returns nil when pageCount is 0: an empty list has no control.
func Pages(selected, pageCount int, opts Options) []Button {
	if pageCount <= 0 {
		return nil
	}
	selected = min(max(selected, 0), pageCount-1)

	buttons := make([]Button, 0, opts.PageRange+2*opts.Margin+4)
	buttons = append(buttons, Button{
		Kind:     ButtonPrevious,
		Label:    opts.PreviousLabel,
		Target:   max(selected-1, 0),
		Disabled: selected == 0,
	})

	page := func(i int) Button {
		return Button{Kind: ButtonPage, Label: strconv.Itoa(i + 1), Target: i, Active: i == selected}
	}

	if pageCount <= opts.PageRange {
		for i := range pageCount {
			buttons = append(buttons, page(i))
		}
	} else {
		left, right := window(selected, pageCount, opts.PageRange)
		lastWasBreak := false
		for i := range pageCount {
			visible := i < opts.Margin || i >= pageCount-opts.Margin || (i >= selected-left && i <= selected+right)
			if visible {
				buttons = append(buttons, page(i))
				lastWasBreak = false
				continue
			}
			if lastWasBreak {
				continue
			}
			buttons = append(buttons, Button{
				Kind:   ButtonBreak,
				Label:  opts.BreakLabel,
				Target: breakTarget(selected, i, pageCount, opts.PageRange),
			})
			lastWasBreak = true
		}
		buttons = collapseSingleGaps(buttons, page)
	}

	buttons = append(buttons, Button{
		Kind:     ButtonNext,
		Label:    opts.NextLabel,
		Target:   min(selected+1, pageCount-1),
		Disabled: selected == pageCount-1,
	})
	return buttons
}

// window returns how many pages to show left and right of selected.
func window(selected, pageCount, pageRange int) (int, int) {
	left := pageRange / 2
	right := pageRange - left
	switch {
	case selected > pageCount-right:
		right = pageCount - selected
		left = pageRange - right
	case selected < left:
		left = selected
		right = pageRange - left
	}
	if selected == 0 && pageRange > 1 {
		right--
	}
	return left, right
}

// breakTarget jumps a full range forward or back from the selection.
func breakTarget(selected, index, pageCount, pageRange int) int {
	if index > selected {
		return min(selected+pageRange, pageCount-1)
	}
	return max(selected-pageRange, 0)
}

// collapseSingleGaps replaces a break that hides exactly one page with that page.
func collapseSingleGaps(buttons []Button, page func(int) Button) []Button {
	for i := 1; i+1 < len(buttons); i++ {
		if buttons[i].Kind != ButtonBreak {
			continue
		}
		prev, next := buttons[i-1], buttons[i+1]
		if prev.Kind == ButtonPage && next.Kind == ButtonPage && next.Target-prev.Target == 2 {
			buttons[i] = page(prev.Target + 1)
		}
	}
	return buttons
}
