package workflow

import (
	"fmt"
	"strings"

	"github.com/alkime/stretch/internal/session"
	"github.com/alkime/stretch/internal/tui/components/labeledspinner"
	"github.com/alkime/stretch/internal/tui/style"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	speakingLabel   = "🔊 말하는 중"
	completeTitle   = "루틴 완료!"
	completeMessage = "잠시 후 기록 화면으로 이동합니다"
)

var phaseStatus = map[session.Phase]string{
	session.PhaseLoading:     "불러오는 중",
	session.PhaseDescription: "동작 설명",
	session.PhaseWaiting:     "자세를 취해 주세요",
	session.PhaseFeedback:    "자세 확인 중",
	session.PhaseMoving:      "다음 동작으로 이동",
	session.PhaseComplete:    "완료",
}

// sessionScreen renders the live state of a running session.
type sessionScreen struct {
	snap      session.Snapshot
	indicator labeledspinner.Model
	progress  progress.Model
	width     int
}

// NewSession creates the live session screen seeded with snap.
func NewSession(snap session.Snapshot) tea.Model {
	s := &sessionScreen{
		indicator: labeledspinner.New(spinner.MiniDot, "", "", ""),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
	s.apply(snap)

	return s
}

func (s *sessionScreen) Init() tea.Cmd {
	return s.indicator.Init()
}

func (s *sessionScreen) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMsg := teaMsg.(type) {
	case SnapshotMsg:
		s.apply(typedMsg.Snapshot)
	case tea.WindowSizeMsg:
		s.width = typedMsg.Width
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.indicator, cmd = s.indicator.Update(typedMsg)
		return s, cmd
	}

	return s, nil
}

func (s *sessionScreen) apply(snap session.Snapshot) {
	s.snap = snap
	s.indicator.Active = snap.Phase == session.PhaseLoading || snap.Speaking
}

func (s *sessionScreen) View() string {
	snap := s.snap

	var sb strings.Builder

	sb.WriteString(s.indicator.Indicator())
	sb.WriteString(" ")
	sb.WriteString(style.Title.Render(snap.ExerciseName))
	if snap.ExerciseCount > 0 {
		sb.WriteString(style.Muted.Render(fmt.Sprintf("  %d/%d", snap.ExerciseIndex+1, snap.ExerciseCount)))
	}
	sb.WriteString("\n")

	sb.WriteString(s.progress.ViewAs(s.routineProgress()))
	sb.WriteString("\n\n")

	if snap.StepNumber > 0 {
		sb.WriteString(style.Label.Render(fmt.Sprintf("Step %d", snap.StepNumber)))
		sb.WriteString("  ")
	}
	sb.WriteString(renderDots(snap.SetDots(), snap.MaxSets))
	sb.WriteString("\n\n")

	desc := style.Description
	if s.width > 4 {
		desc = desc.Width(s.width - 4)
	}
	sb.WriteString(desc.Render(snap.Description))
	sb.WriteString("\n\n")

	sb.WriteString(style.Subtitle.Render(phaseStatus[snap.Phase]))
	if snap.Speaking {
		sb.WriteString("  ")
		sb.WriteString(style.Warning.Render(speakingLabel))
	}
	sb.WriteString("\n")

	if snap.Feedback != "" {
		sb.WriteString(s.feedbackStyle().Render(snap.Feedback))
		sb.WriteString("\n")
	}

	if snap.LoadError != "" {
		sb.WriteString(style.Error.Render(snap.LoadError))
		sb.WriteString("\n")
	}

	if snap.Completed {
		sb.WriteString("\n")
		sb.WriteString(style.Popup.Render(style.Success.Render(completeTitle) + "\n" + completeMessage))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderGlobalKeyHelp())

	return sb.String()
}

// routineProgress is the fraction of the routine's sets already done.
func (s *sessionScreen) routineProgress() float64 {
	snap := s.snap
	if snap.Completed {
		return 1
	}

	total := snap.ExerciseCount * snap.MaxSets
	if total == 0 {
		return 0
	}

	return float64(snap.ExerciseIndex*snap.MaxSets+snap.SetDots()) / float64(total)
}

// The verdict itself is not part of the snapshot. Feedback spoken on the way
// to the next step was a match.
func (s *sessionScreen) feedbackStyle() lipgloss.Style {
	if s.snap.Phase == session.PhaseMoving || s.snap.Completed {
		return style.Success
	}
	return style.Warning
}
