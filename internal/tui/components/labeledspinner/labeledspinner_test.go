package labeledspinner_test

import (
	"testing"

	"github.com/alkime/stretch/internal/tui/components/labeledspinner"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestLabeledSpinner(t *testing.T) {
	m := labeledspinner.New(spinner.Dot, "로딩 중...", "포즈 설명을 불러오는 중입니다...", "q quit")
	t.Run("initial state", func(t *testing.T) {
		assert.True(t, m.Active)
		assert.Equal(t, spinner.Dot, m.Spinner.Spinner)
	})

	v0 := m.View()
	t.Run("view output", func(t *testing.T) {
		assert.Contains(t, v0, "로딩 중...")
		assert.Contains(t, v0, "포즈 설명을 불러오는 중입니다...")
		assert.Contains(t, v0, "q quit")
		assert.Contains(t, v0, spinner.Dot.Frames[0])
	})

	t.Run("ticks advance the frame", func(t *testing.T) {
		m, _ = m.Update(spinner.TickMsg{})
		assert.Contains(t, m.View(), spinner.Dot.Frames[1])
		m, _ = m.Update(spinner.TickMsg{})
		assert.Contains(t, m.View(), spinner.Dot.Frames[2])
	})

	t.Run("inactive shows the idle marker", func(t *testing.T) {
		m.Active = false
		assert.Equal(t, labeledspinner.IdleMarker, m.Indicator())
		assert.NotContains(t, m.View(), spinner.Dot.Frames[2])
	})

	t.Run("empty subtitle and help are omitted", func(t *testing.T) {
		bare := labeledspinner.New(spinner.Dot, "Title", "", "")
		assert.Equal(t, spinner.Dot.Frames[0]+" Title\n\n", bare.View())
	})
}
