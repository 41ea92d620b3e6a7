package bot

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskquest/internal/view"
)

const barWidth = 10

// colorDots approximates palette colors in chat, which cannot render hex.
var colorDots = map[string]string{
	"#FF6B6B": "🔴",
	"#FFA94D": "🟠",
	"#FFD43B": "🟡",
	"#69DB7C": "🟢",
	"#4DABF7": "🔵",
	"#9775FA": "🟣",
	"#F783AC": "🩷",
}

func escape(s string) string {
	return html.EscapeString(s)
}

func colorDot(hex string) string {
	if dot, ok := colorDots[strings.ToUpper(hex)]; ok {
		return dot
	}
	return "⚪"
}

func progressBar(percent int) string {
	filled := percent * barWidth / 100
	return strings.Repeat("▰", filled) + strings.Repeat("▱", barWidth-filled)
}

func badgeIcons(badges []view.Badge) string {
	var b strings.Builder
	for _, badge := range badges {
		b.WriteString(badge.Icon)
	}
	return b.String()
}

// formatBoard renders the selected category, or the category list with a
// picker when nothing is selected.
func formatBoard(board view.Board) (string, *tgbotapi.InlineKeyboardMarkup) {
	if board.Selected == nil {
		return formatCategories(board.Categories), categoryPicker(board.Categories)
	}

	var b strings.Builder
	b.WriteString(formatCategoryHeader(*board.Selected))
	if len(board.Tasks) == 0 {
		b.WriteString("\n\nNo tasks yet. Add one with /newtask.")
		return b.String(), nil
	}
	b.WriteString("\n")
	for _, task := range board.Tasks {
		b.WriteString("\n")
		b.WriteString(formatTaskRow(task))
	}
	b.WriteString("\n\nTap a task to toggle it.")
	return b.String(), taskToggles(board.Tasks)
}

func formatCategoryHeader(row view.CategoryRow) string {
	header := fmt.Sprintf("<b>%s</b> · level %d", escape(row.Name), row.Level)
	if icons := badgeIcons(row.Badges); icons != "" {
		header += " " + icons
	}
	return header + fmt.Sprintf("\n%s %d/%d XP · %d to go",
		progressBar(row.Percent), row.XP, row.Threshold, row.Remaining)
}

func formatTaskRow(task view.TaskRow) string {
	mark := "⬜"
	if task.Done {
		mark = "✅"
	}
	line := fmt.Sprintf("%d. %s %s %s", task.Position, mark, colorDot(task.Color), escape(task.Text))
	if task.Daily {
		line += " 🔁"
	}
	return line
}

func formatCategories(rows []view.CategoryRow) string {
	if len(rows) == 0 {
		return "📂 No categories yet. Create one with /newcategory <name>."
	}
	var b strings.Builder
	b.WriteString("📂 <b>Categories</b>\n")
	for _, row := range rows {
		marker := ""
		if row.Selected {
			marker = " ▶️"
		}
		fmt.Fprintf(&b, "\n%d. %s · L%d · %d/%d done%s", row.Position, escape(row.Name), row.Level, row.Done, row.Total, marker)
	}
	b.WriteString("\n\nPick one below or use /select <n>.")
	return b.String()
}

func formatProgress(rows []view.CategoryRow) string {
	if len(rows) == 0 {
		return "📈 Nothing to show yet."
	}
	var b strings.Builder
	b.WriteString("📈 <b>Progress</b>")
	for _, row := range rows {
		b.WriteString("\n\n")
		b.WriteString(formatCategoryHeader(row))
	}
	return b.String()
}

func formatSummary(s view.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗓 <b>Summary for %s</b>\n", escape(string(s.Today)))
	fmt.Fprintf(&b, "\nDone today: %d · Open tasks: %d", s.DoneToday, s.OpenTasks)
	if len(s.PendingDaily) == 0 {
		b.WriteString("\n\nAll daily tasks are done. 🎯")
	} else {
		b.WriteString("\n\n🔁 <b>Daily tasks left</b>")
		for _, p := range s.PendingDaily {
			fmt.Fprintf(&b, "\n• %s · %s", escape(p.Text), escape(p.Category))
		}
	}
	for _, row := range s.Categories {
		fmt.Fprintf(&b, "\n%s L%d %s", escape(row.Name), row.Level, progressBar(row.Percent))
	}
	return b.String()
}

func formatLevelUp(categoryName string, level int) string {
	text := fmt.Sprintf("🎉 <b>%s</b> reached level %d!", escape(categoryName), level)
	if badge, ok := view.NewlyUnlocked(level); ok {
		text += fmt.Sprintf("\n%s Badge unlocked: <b>%s</b>", badge.Icon, escape(badge.Name))
	}
	return text
}

const helpText = `<b>TaskQuest</b> turns your tasks into experience.

/categories - list categories
/newcategory &lt;name&gt; - create a category
/select &lt;n&gt; - select a category
/newtask - add a task to the selected category
/tasks - show and toggle tasks
/deletecategory &lt;n&gt; - delete a category
/resetcategory [n] - uncheck every task in a category
/resetdaily - uncheck every daily task
/progress - levels and badges
/report - today's summary
/resetall - wipe everything
/cancel - stop the current dialog`
