package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// StatusBox renders a titled panel of label/value rows.
func StatusBox(title string, fields [][2]string) string {
	lines := make([]string, 0, len(fields)+1)
	if !isTTY() {
		lines = append(lines, title, strings.Repeat("=", lipgloss.Width(title)))
		for _, f := range fields {
			lines = append(lines, fmt.Sprintf("%-*s %s", labelWidth, f[0]+":", f[1]))
		}
		return strings.Join(lines, "\n") + "\n"
	}

	lines = append(lines, StyleTitle.Render(title))
	for _, f := range fields {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, StyleLabel.Render(f[0]), StyleValue.Render(f[1])))
	}
	return StylePanel.Render(strings.Join(lines, "\n"))
}

// RenderTable renders rows under headers. Off-terminal it emits aligned
// plain columns that are safe to pipe into other tools.
func RenderTable(headers []string, rows [][]string) string {
	if !isTTY() {
		return plainTable(headers, rows)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		BorderRow(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return StyleCellHead
			case row%2 == 1:
				return StyleCellAlt
			default:
				return StyleCell
			}
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func plainTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	measure := func(cells []string) {
		for i := range min(len(cells), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(cells[i]))
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}
	writeRow(rules)
	for _, r := range rows {
		writeRow(r)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// messages is where status lines go. With --output json stdout is
// reserved for the document.
func messages() io.Writer {
	if jsonOutput() {
		return os.Stderr
	}
	return os.Stdout
}

// notice is a one-line status message in styled and plain form.
type notice struct {
	glyph string
	tag   string
	style lipgloss.Style
}

var (
	noticeOK   = notice{"✓", "[OK]", lipgloss.NewStyle().Foreground(colorGain)}
	noticeErr  = notice{"✗", "[ERROR]", lipgloss.NewStyle().Foreground(colorLoss)}
	noticeWarn = notice{"!", "[WARN]", lipgloss.NewStyle().Foreground(colorWait)}
	noticeInfo = notice{"·", "[INFO]", lipgloss.NewStyle().Foreground(colorNote)}
)

func (n notice) print(msg string) {
	if isTTY() {
		fmt.Fprintln(messages(), n.style.Render(n.glyph+" "+msg))
		return
	}
	fmt.Fprintln(messages(), n.tag+" "+msg)
}

func Success(msg string) { noticeOK.print(msg) }
func Error(msg string)   { noticeErr.print(msg) }
func Warning(msg string) { noticeWarn.print(msg) }
func Info(msg string)    { noticeInfo.print(msg) }

// WithSpinner shows msg while fn runs. Off-terminal fn runs silently.
func WithSpinner(msg string, fn func() error) error {
	if !isTTY() {
		return fn()
	}
	var fnErr error
	if err := spinner.New().Title(" " + msg).Action(func() { fnErr = fn() }).Run(); err != nil {
		return err
	}
	return fnErr
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatETH shows four decimals, matching the web dashboard.
func FormatETH(amount decimal.Decimal) string {
	return amount.StringFixed(4) + " ETH"
}

// FormatUSD renders dollars with thousands separators, e.g. "$1,234.56".
func FormatUSD(amount decimal.Decimal) string {
	whole, cents, _ := strings.Cut(amount.StringFixed(2), ".")
	return "$" + addThousandsSep(whole) + "." + cents
}

func FormatETHWithUSD(eth, usd decimal.Decimal) string {
	return FormatETH(eth) + " (≈ " + FormatUSD(usd) + ")"
}

func addThousandsSep(digits string) string {
	sign := ""
	if rest, ok := strings.CutPrefix(digits, "-"); ok {
		sign, digits = "-", rest
	}
	groups := make([]string, 0, len(digits)/3+1)
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ",")
}

// FormatAddress shortens 0xABCDEF...0123 style addresses for tables.
func FormatAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func SectionHeader(title string) string {
	if !isTTY() {
		return "\n" + title + "\n" + strings.Repeat("-", lipgloss.Width(title))
	}
	return StyleSection.Render(strings.ToUpper(title))
}

func KeyValue(key, value string) string {
	if !isTTY() {
		return fmt.Sprintf("  %-*s %s", labelWidth, key+":", value)
	}
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, StyleLabel.Render(key), StyleValue.Render(value))
}

// Hint is a dimmed follow-up suggestion.
func Hint(msg string) string {
	if !isTTY() {
		return "  " + msg
	}
	return "  " + StyleDim.Render(msg)
}

// WarningBanner flags degraded data, such as a fallback ETH price.
func WarningBanner(msg string) string {
	if !isTTY() {
		return "[WARN] " + msg
	}
	return StyleAlert.Render(msg)
}
