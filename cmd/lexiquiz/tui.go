package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/japaniel/lexiquiz/pkg/cycle"
	"github.com/japaniel/lexiquiz/pkg/quiz"
	"github.com/japaniel/lexiquiz/pkg/words"
)

type screen int

const (
	screenLoading screen = iota
	screenQuestion
	screenFeedback
	screenEnd
)

type keyMap struct {
	Answer     key.Binding
	Next       key.Binding
	Pause      key.Binding
	Difficulty key.Binding
	Category   key.Binding
	Again      key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Answer, k.Next, k.Pause, k.Difficulty, k.Category, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Again}}
}

func newKeyMap() keyMap {
	return keyMap{
		Answer:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "answer")),
		Next:       key.NewBinding(key.WithKeys("enter", " ", "n"), key.WithHelp("enter", "next")),
		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Difficulty: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "difficulty")),
		Category:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Again:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// wordMsg carries a draw for the pair it was requested for.
type wordMsg struct {
	difficulty string
	category   string
	draw       cycle.Draw
	err        error
}

type timeoutMsg struct{ outcome quiz.Outcome }

type tickMsg time.Time

type model struct {
	ctx       context.Context
	game      *quiz.Game
	timeouts  <-chan quiz.Outcome
	timeLimit time.Duration
	keys      keyMap
	help      help.Model

	difficulty string
	category   string

	screen   screen
	word     *cycle.PreparedWord
	end      *cycle.EndOfCategory
	outcome  quiz.Outcome
	deadline time.Time
	now      time.Time
	paused   bool
	err      error
}

func newModel(ctx context.Context, g *quiz.Game, timeouts <-chan quiz.Outcome, timeLimit time.Duration) model {
	d, c := g.Selection()
	return model{
		ctx:        ctx,
		game:       g,
		timeouts:   timeouts,
		timeLimit:  timeLimit,
		keys:       newKeyMap(),
		help:       help.New(),
		difficulty: d,
		category:   c,
		now:        time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), waitForTimeout(m.timeouts))
}

func (m model) fetch() tea.Cmd {
	ctx, g, d, c := m.ctx, m.game, m.difficulty, m.category
	return func() tea.Msg {
		draw, err := g.NextWord(ctx, d, c)
		return wordMsg{difficulty: d, category: c, draw: draw, err: err}
	}
}

func waitForTimeout(ch <-chan quiz.Outcome) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		o, ok := <-ch
		if !ok {
			return nil
		}
		return timeoutMsg{outcome: o}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case wordMsg:
		// A draw for a pair we already switched away from is dropped.
		if msg.difficulty != m.difficulty || msg.category != m.category || errors.Is(msg.err, quiz.ErrStaleSelection) {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.draw.Exhausted() {
			m.screen = screenEnd
			m.word = nil
			m.end = msg.draw.End
			return m, nil
		}
		m.screen = screenQuestion
		m.word = msg.draw.Word
		m.paused = false
		if m.timeLimit > 0 {
			m.now = time.Now()
			m.deadline = m.now.Add(m.timeLimit)
			return m, tick()
		}
		return m, nil

	case timeoutMsg:
		if m.screen == screenQuestion && m.word != nil && msg.outcome.Term == m.word.Term {
			m.outcome = msg.outcome
			m.screen = screenFeedback
		}
		return m, waitForTimeout(m.timeouts)

	case tickMsg:
		m.now = time.Time(msg)
		if m.screen == screenQuestion && !m.paused {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Difficulty):
		return m.switchTo(nextOf(words.Difficulties, m.difficulty), m.category)
	case key.Matches(msg, m.keys.Category):
		return m.switchTo(m.difficulty, nextOf(words.Categories, m.category))
	}

	switch m.screen {
	case screenQuestion:
		if key.Matches(msg, m.keys.Pause) {
			return m.togglePause()
		}
		if key.Matches(msg, m.keys.Answer) && !m.paused {
			idx := int(msg.String()[0] - '1')
			if idx < 0 || idx >= len(m.word.Options) {
				return m, nil
			}
			out, err := m.game.SubmitAnswer(m.word.Options[idx])
			if err != nil {
				// Already scored by the timer; its message is on the way.
				return m, nil
			}
			m.outcome = out
			m.screen = screenFeedback
		}
	case screenFeedback:
		if key.Matches(msg, m.keys.Next) {
			m.screen = screenLoading
			return m, m.fetch()
		}
	case screenEnd:
		if key.Matches(msg, m.keys.Again) || key.Matches(msg, m.keys.Next) {
			if err := m.game.ResetCycle(m.difficulty, m.category); err != nil {
				m.err = err
				return m, nil
			}
			m.screen = screenLoading
			m.end = nil
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m model) switchTo(difficulty, category string) (tea.Model, tea.Cmd) {
	if err := m.game.Select(difficulty, category); err != nil {
		m.err = err
		return m, nil
	}
	m.difficulty, m.category = difficulty, category
	m.screen = screenLoading
	m.word, m.end = nil, nil
	return m, m.fetch()
}

func (m model) togglePause() (tea.Model, tea.Cmd) {
	if m.paused {
		m.game.Resume()
		m.paused = false
		if m.timeLimit > 0 {
			m.now = time.Now()
			m.deadline = m.now.Add(m.timeLimit)
			return m, tick()
		}
		return m, nil
	}
	m.game.Pause()
	m.paused = true
	return m, nil
}

func nextOf(list []string, current string) string {
	i := slices.Index(list, current)
	return list[(i+1)%len(list)]
}

func (m model) View() string {
	if m.err != nil {
		return styleError.Render("Error: "+m.err.Error()) + "\n"
	}
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	switch m.screen {
	case screenLoading:
		b.WriteString(styleSubtle.Render("Loading words..."))
	case screenQuestion:
		b.WriteString(m.viewQuestion())
	case screenFeedback:
		b.WriteString(m.viewFeedback())
	case screenEnd:
		b.WriteString(m.viewEnd())
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m model) viewHeader() string {
	s := m.game.Stats()
	title := styleHeader.Render(fmt.Sprintf("lexiquiz · %s / %s", m.difficulty, m.category))
	return title + styleSubtle.Render(fmt.Sprintf("score %d  streak %d  level %d", s.TotalScore, s.CurrentStreak, s.Level))
}

func (m model) viewQuestion() string {
	w := m.word
	var b strings.Builder
	b.WriteString(styleTerm.Render(w.Term))
	if w.Pronunciation != "" {
		b.WriteString("  " + styleSubtle.Render("["+w.Pronunciation+"]"))
	}
	b.WriteString("\n\n")
	for i, o := range w.Options {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, o)
	}
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(fmt.Sprintf("word %d of %d", w.Meta.Total-w.Meta.Remaining, w.Meta.Total)))
	switch {
	case m.paused:
		b.WriteString("  " + styleWarn.Render("paused"))
	case m.timeLimit > 0:
		left := max(m.deadline.Sub(m.now).Round(time.Second), 0)
		b.WriteString("  " + styleWarn.Render(fmt.Sprintf("%s left", left)))
	}
	return styleBox.Render(b.String())
}

func (m model) viewFeedback() string {
	o := m.outcome
	var b strings.Builder
	switch {
	case o.Correct:
		b.WriteString(styleCorrect.Render(fmt.Sprintf("Correct! +%d points", o.Points)))
		if o.Streak > 1 {
			b.WriteString(styleSubtle.Render(fmt.Sprintf("  (streak %d)", o.Streak)))
		}
	case o.TimedOut:
		b.WriteString(styleIncorrect.Render("Time's up."))
	default:
		b.WriteString(styleIncorrect.Render("Not quite."))
	}
	fmt.Fprintf(&b, "\n%s: %s", styleTerm.Render(o.Term), o.CorrectAnswer)
	if o.LeveledUp {
		b.WriteString("\n" + styleWarn.Render(fmt.Sprintf("Level up! You reached level %d.", o.Level)))
	}
	if o.CategoryCompleted {
		b.WriteString("\n" + styleCorrect.Render("That was the last word of this category."))
	}
	b.WriteString(styleSubtle.Render("\n\nPress Enter for the next word..."))
	return b.String()
}

func (m model) viewEnd() string {
	var b strings.Builder
	b.WriteString(styleCorrect.Render(m.end.Message))
	fmt.Fprintf(&b, "\n%d of %d words played.\n\n", m.end.VisitedCount, m.end.Total)
	b.WriteString(renderCompletion(m.game.Stats().Completion))
	b.WriteString(styleSubtle.Render("\nPress r to play this category again, d or c to switch."))
	return b.String()
}
