package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

const (
	pagePrefix   = "pg:" // callback data selecting a zero-based page
	noopCallback = "noop"

	maxTitleLen = 60
)

// keyboardOptions keeps the control narrow enough for one keyboard row on mobile.
var keyboardOptions = catalog.Options{
	PageRange:     3,
	Margin:        1,
	PreviousLabel: "‹ prev",
	NextLabel:     "next ›",
	BreakLabel:    "…",
}

// renderList formats the state of a list view as MarkdownV2.
func renderList(title string, s catalog.State) string {
	var sb strings.Builder
	sb.WriteString(FormatBold(title))

	switch s.Status {
	case catalog.StatusIdle, catalog.StatusLoading:
		if s.PageCount > 0 {
			sb.WriteString(EscapeMdV2(fmt.Sprintf(" · page %d of %d", s.Page, s.PageCount)))
		}
		sb.WriteString("\n\n")
		sb.WriteString(FormatItalic("Loading…"))
		return sb.String()
	case catalog.StatusErrored:
		sb.WriteString("\n\n")
		sb.WriteString(EscapeMdV2("⚠️ Could not load this page. Pick a page to try again."))
		return sb.String()
	}

	if s.Empty() {
		sb.WriteString("\n\n")
		sb.WriteString(EscapeMdV2("No titles found."))
		return sb.String()
	}

	sb.WriteString(EscapeMdV2(fmt.Sprintf(" · page %d of %d · %d titles", s.Page, s.PageCount, s.TotalResults)))
	sb.WriteString("\n\n")
	for i, it := range s.Items {
		line := fmt.Sprintf("%d. %s", s.ItemOffset+i+1, truncate(it.Title, maxTitleLen))
		if y := year(it.ReleaseDate); y != "" {
			line += " (" + y + ")"
		}
		if it.VoteAverage > 0 {
			line += fmt.Sprintf(" ★ %.1f", it.VoteAverage)
		}
		sb.WriteString(EscapeMdV2(line))
		if it.MediaType == tmdb.MediaMovie && it.ID != 0 {
			sb.WriteString(EscapeMdV2(fmt.Sprintf(" /movie_%d", it.ID)))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// pageKeyboard builds the inline pagination control for s. A failed load
// with no known page count gets a single retry button.
func pageKeyboard(s catalog.State) *tgbotapi.InlineKeyboardMarkup {
	buttons := catalog.Pages(s.PageIndex, s.SelectablePages(), keyboardOptions)
	if len(buttons) == 0 {
		if s.Status != catalog.StatusErrored {
			return nil
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↻ retry", pageCallback(0)),
		))
		return &kb
	}

	var pages, nav []tgbotapi.InlineKeyboardButton
	for _, b := range buttons {
		switch b.Kind {
		case catalog.ButtonPrevious, catalog.ButtonNext:
			if !b.Disabled {
				nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(b.Label, pageCallback(b.Target)))
			}
		case catalog.ButtonPage:
			label, data := b.Label, pageCallback(b.Target)
			if b.Active {
				label = "· " + b.Label + " ·"
				if s.Status != catalog.StatusErrored {
					data = noopCallback
				}
			}
			pages = append(pages, tgbotapi.NewInlineKeyboardButtonData(label, data))
		case catalog.ButtonBreak:
			pages = append(pages, tgbotapi.NewInlineKeyboardButtonData(b.Label, pageCallback(b.Target)))
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{pages}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func pageCallback(index int) string {
	return pagePrefix + strconv.Itoa(index)
}

// parsePageCallback extracts the page index from "pg:<index>".
func parsePageCallback(data string) (int, bool) {
	raw, ok := strings.CutPrefix(data, pagePrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// renderMovie formats movie details and cast as MarkdownV2.
func renderMovie(m *tmdb.MovieDetails, credits *tmdb.Credits) string {
	var sb strings.Builder
	title := m.Title
	if y := year(m.ReleaseDate); y != "" {
		title += " (" + y + ")"
	}
	sb.WriteString(FormatBold(title))
	sb.WriteString("\n")
	if m.Tagline != "" {
		sb.WriteString(FormatItalic(m.Tagline))
		sb.WriteString("\n")
	}

	var facts []string
	if m.VoteAverage > 0 {
		facts = append(facts, fmt.Sprintf("★ %.1f (%d votes)", m.VoteAverage, m.VoteCount))
	}
	if m.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", m.Runtime))
	}
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		facts = append(facts, strings.Join(names, ", "))
	}
	if len(facts) > 0 {
		sb.WriteString(EscapeMdV2(strings.Join(facts, " · ")))
		sb.WriteString("\n")
	}

	if m.Overview != "" {
		sb.WriteString("\n")
		sb.WriteString(EscapeMdV2(m.Overview))
		sb.WriteString("\n")
	}

	if credits != nil && len(credits.Cast) > 0 {
		cast := credits.Cast[:min(len(credits.Cast), 5)]
		names := make([]string, 0, len(cast))
		for _, c := range cast {
			if c.Character != "" {
				names = append(names, c.Name+" as "+c.Character)
			} else {
				names = append(names, c.Name)
			}
		}
		sb.WriteString("\n")
		sb.WriteString(FormatBold("Cast: "))
		sb.WriteString(EscapeMdV2(strings.Join(names, ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
