package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"taskquest/internal/view"
)

const barWidth = 20

func bar(percent int) string {
	filled := percent * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func badgeNames(badges []view.Badge) string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Icon+" "+b.Name)
	}
	return strings.Join(names, ", ")
}

func levelUpLine(name string, level int) string {
	line := fmt.Sprintf("🎉 %s reached level %d!", name, level)
	if badge, ok := view.NewlyUnlocked(level); ok {
		line += fmt.Sprintf(" %s Badge unlocked: %s", badge.Icon, badge.Name)
	}
	return line
}

func printCategories(w io.Writer, rows []view.CategoryRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No categories yet. Add one with: taskquest category add <name>")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "%d.\t%s\tL%d\t%d/%d XP\t%d/%d done\t%s\n",
			row.Position, row.Name, row.Level, row.XP, row.Threshold, row.Done, row.Total, badgeNames(row.Badges))
	}
	return tw.Flush()
}

func printBoard(w io.Writer, board view.Board) error {
	if board.Selected == nil {
		return printCategories(w, board.Categories)
	}
	cat := board.Selected
	fmt.Fprintf(w, "%s  level %d  %s %d/%d XP\n", cat.Name, cat.Level, bar(cat.Percent), cat.XP, cat.Threshold)
	if len(board.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, task := range board.Tasks {
		mark := "[ ]"
		if task.Done {
			mark = "[x]"
		}
		kind := ""
		if task.Daily {
			kind = "daily"
		}
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\t%s\n", task.Position, mark, task.Text, kind, task.Color)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s view.Summary) error {
	fmt.Fprintf(w, "Summary for %s: %d done today, %d open\n", s.Today, s.DoneToday, s.OpenTasks)
	for _, row := range s.Categories {
		fmt.Fprintf(w, "%-16s L%-3d %s %d/%d XP", row.Name, row.Level, bar(row.Percent), row.XP, row.Threshold)
		if badges := badgeNames(row.Badges); badges != "" {
			fmt.Fprintf(w, "  %s", badges)
		}
		fmt.Fprintln(w)
	}
	if len(s.PendingDaily) == 0 {
		_, err := fmt.Fprintln(w, "All daily tasks are done.")
		return err
	}
	fmt.Fprintln(w, "Daily tasks left:")
	for _, p := range s.PendingDaily {
		fmt.Fprintf(w, "  - %s (%s)\n", p.Text, p.Category)
	}
	return nil
}
