package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"simrun/internal/domain"
	"simrun/internal/storage"
)

// maxShownLines bounds the classified lines shown per category.
const maxShownLines = 20

// ErrorViewer displays failing instances in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
}

// NewErrorViewer creates a new ErrorViewer saving resolved marks to st
func NewErrorViewer(st storage.Storage) *ErrorViewer {
	return &ErrorViewer{storage: st}
}

// failureIndex maps list rows to positions in report.Results.
func failureIndex(report *domain.RunReport) []int {
	var idx []int
	for i, r := range report.Results {
		if r.Failed() {
			idx = append(idx, i)
		}
	}
	return idx
}

// View displays failing instances in an interactive TUI
func (ev *ErrorViewer) View(report *domain.RunReport) error {
	rows := failureIndex(report)
	if len(rows) == 0 {
		color.Green("✓ No failing instances found!")
		return nil
	}
	result := func(row int) *domain.InstanceResult { return &report.Results[rows[row]] }

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i := range rows {
		list.AddItem(listItemText(i, result(i)), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		unresolved := 0
		for i := range rows {
			if !result(i).Resolved {
				unresolved++
			}
		}
		headerView.SetText(fmt.Sprintf(" %s %s: %d failing, %d unresolved | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
			report.Meta.Mode, report.Meta.Target, len(rows), unresolved))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(rows) {
			r := result(index)
			statsView.SetText(formatFailureStats(r))
			detailsView.SetText(formatFailureDetails(r))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(rows) {
					r := result(index)
					r.Resolved = !r.Resolved
					list.SetItemText(index, listItemText(index, r), "")
					updateHeader()
					updateDetails()
					if err := ev.storage.Save(report); err != nil {
						statsView.SetText(fmt.Sprintf("[red]save failed: %s[white]", tview.Escape(err.Error())))
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func instanceName(r *domain.InstanceResult) string {
	name := r.Test + "__" + fmt.Sprint(r.Seed)
	if r.Bucket != "" {
		name = r.Bucket + "__" + name
	}
	return name
}

func listItemText(index int, r *domain.InstanceResult) string {
	name := tview.Escape(instanceName(r))
	if r.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

// formatFailureDetails formats an instance using tview color tags.
func formatFailureDetails(r *domain.InstanceResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s seed %d: %s[white]\n\n", tview.Escape(r.Test), r.Seed, r.Outcome.Status)
	fmt.Fprintf(&b, "[cyan]Dir: %s[white]\n", tview.Escape(r.Dir))
	if r.Outcome.LogPath != "" {
		fmt.Fprintf(&b, "[cyan]Log: %s[white]\n", tview.Escape(r.Outcome.LogPath))
	}
	if !r.Outcome.Finished {
		b.WriteString("[yellow]The log has no end-of-run marker.[white]\n")
	}
	b.WriteString("\n")

	if r.Error != "" {
		fmt.Fprintf(&b, "[yellow]Error:[white]\n%s\n\n", tview.Escape(r.Error))
	}
	writeLines(&b, "Errors", "red", r.Outcome.Errors)
	writeLines(&b, "Warnings", "yellow", r.Outcome.Warnings)
	writeLines(&b, "Ignored errors", "gray", r.Outcome.Excluded)
	return b.String()
}

func writeLines(b *strings.Builder, title, tag string, lines []domain.LogLine) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "[yellow]%s:[white]\n", title)
	for i, l := range lines {
		if i == maxShownLines {
			fmt.Fprintf(b, "  [gray]... and %d more lines[white]\n", len(lines)-maxShownLines)
			break
		}
		fmt.Fprintf(b, "  [%s]%6d[white]  %s\n", tag, l.Number, tview.Escape(l.Text))
	}
	b.WriteString("\n")
}

// formatFailureStats formats the stats header of an instance.
func formatFailureStats(r *domain.InstanceResult) string {
	bucket := r.Bucket
	if bucket == "" {
		bucket = "-"
	}
	return fmt.Sprintf("[cyan]bucket:[white] [yellow]%s[white]  [cyan]test:[white] [yellow]%s[white]  [cyan]seed:[white] [yellow]%d[white]\n",
		tview.Escape(bucket), tview.Escape(r.Test), r.Seed)
}
