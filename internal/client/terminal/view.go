// Package terminal draws the chat client on a plain terminal stream.
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"productivity-chatbot/internal/client/analytics"
	"productivity-chatbot/internal/client/channel"
	"productivity-chatbot/internal/client/history"
)

var (
	userStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAFAF"))

	statusStyles = map[channel.State]lipgloss.Style{
		channel.Connected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		channel.Connecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		channel.Disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		channel.Errored:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	noticeStyles = map[channel.Severity]lipgloss.Style{
		channel.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")),
		channel.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		channel.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		channel.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	panelKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAFAF"))
	panelErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View writes chat output line by line. Safe for concurrent use.
type View struct {
	mu  sync.Mutex
	out io.Writer
}

func NewView(out io.Writer) *View {
	return &View{out: out}
}

func (v *View) println(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintln(v.out, s)
}

func (v *View) Append(msg history.Message) {
	v.println(FormatMessage(msg))
}

func (v *View) Reset() {
	v.println(metaStyle.Render("── history cleared ──"))
}

// ScrollToLatest is a no-op: a terminal always shows the newest line.
func (v *View) ScrollToLatest() {}

func (v *View) SetStatus(state channel.State) {
	style, ok := statusStyles[state]
	if !ok {
		style = metaStyle
	}
	v.println(style.Render("● " + state.String()))
}

func (v *View) SetTyping(typing bool) {
	if typing {
		v.println(metaStyle.Render("Bot is typing..."))
	}
}

func (v *View) Notify(severity channel.Severity, text string) {
	style, ok := noticeStyles[severity]
	if !ok {
		style = metaStyle
	}
	v.println(style.Render("» " + text))
}

func (v *View) ShowAnalytics(panel analytics.Panel) {
	v.println(FormatPanel(panel))
}

// FormatMessage renders one bubble with its time and, for bot replies, the
// intent and confidence.
func FormatMessage(msg history.Message) string {
	var b strings.Builder
	stamp := msg.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	b.WriteString(timeStyle.Render(stamp.Local().Format("15:04")))
	b.WriteString(" ")
	if msg.Sender == history.SenderUser {
		b.WriteString(userStyle.Render("you"))
	} else {
		b.WriteString(botStyle.Render("bot"))
	}
	b.WriteString(": ")
	b.WriteString(msg.Content)
	if msg.Metadata != nil && msg.Metadata.Intent != "" {
		b.WriteString(" ")
		b.WriteString(metaStyle.Render(fmt.Sprintf("[%s %.0f%%]", msg.Metadata.Intent, msg.Metadata.Confidence*100)))
	}
	return b.String()
}

// FormatPanel renders the analytics panel; intent rows keep their order.
func FormatPanel(p analytics.Panel) string {
	if p.Error != "" {
		return panelStyle.Render(panelTitleStyle.Render("Analytics") + "\n" + panelErrStyle.Render(p.Error))
	}
	lines := []string{
		panelTitleStyle.Render("Analytics"),
		panelKeyStyle.Render("Conversations: ") + strconv.FormatInt(p.TotalConversations, 10),
		panelKeyStyle.Render("Messages:      ") + strconv.FormatInt(p.TotalMessages, 10),
		panelKeyStyle.Render("Avg confidence:") + " " + p.ConfidencePercent(),
	}
	if len(p.Rows) == 0 {
		lines = append(lines, metaStyle.Render("No intent data yet"))
	} else {
		lines = append(lines, "", panelTitleStyle.Render("Intents"))
		for _, row := range p.Rows {
			lines = append(lines, fmt.Sprintf("%-20s %d", strings.ReplaceAll(row.Intent, "_", " "), row.Count))
		}
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
