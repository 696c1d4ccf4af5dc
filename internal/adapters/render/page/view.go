package page

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const helpText = "f favorite • l like • d dislike • r refresh • esc back • q quit"

// ViewData is everything the page shows besides the surface elements.
type ViewData struct {
	Identity    *domain.Identity
	State       domain.State
	VideoID     string
	UserData    domain.UserData
	Notice      string
	Spinner     string
	Interactive bool
}

func renderView(snapshot Snapshot, data ViewData, s styles) string {
	lines := []string{s.title.Render("Telegram mini-app session")}

	if snapshot.Status.Visible {
		status := s.statusStyle(snapshot.Status.Color).Render(snapshot.Status.Text)
		if snapshot.Loading.Visible && data.Spinner != "" {
			status = data.Spinner + " " + status
		}
		lines = append(lines, status)
	}

	if snapshot.Content.Visible {
		lines = append(lines, s.section.Render(s.box.Render(renderContent(data, s))))
	}

	if data.Notice != "" {
		lines = append(lines, s.notice.Render(data.Notice))
	}

	if data.Interactive {
		lines = append(lines, s.help.Render(helpText))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderContent(data ViewData, s styles) string {
	var rows []string
	if data.Identity != nil {
		rows = append(rows,
			field(s, "user", fmt.Sprintf("%s (@%s)", data.Identity.DisplayName(), data.Identity.Username)),
			field(s, "id", data.Identity.ID.String()),
			field(s, "language", data.Identity.LanguageCode),
		)
	}
	if data.State != "" {
		rows = append(rows, field(s, "state", string(data.State)))
	}
	if data.VideoID != "" {
		rows = append(rows, field(s, "video", data.VideoID))
	}

	if len(data.UserData) == 0 {
		rows = append(rows, s.empty.Render("no user data loaded"))
	} else {
		for _, key := range data.UserData.Keys() {
			rows = append(rows, field(s, key, userDataValue(data.UserData, key)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func field(s styles, label, value string) string {
	return s.label.Render(label+":") + " " + s.value.Render(value)
}

func userDataValue(data domain.UserData, key string) string {
	if list := data.StringList(key); list != nil {
		if len(list) == 0 {
			return "none"
		}
		return strings.Join(list, ", ")
	}

	var value any
	if err := json.Unmarshal(data[key], &value); err != nil {
		return string(data[key])
	}
	if text, ok := value.(string); ok {
		return text
	}
	return string(data[key])
}
