package main

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/jstachio/ezkv"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [flags] <uri> [uri...]",
		Short: "Resolve root resources, then pick a key and view its provenance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := ezkv.NewDefaultEnvironment()

			kvs, err := ezkv.NewSystem().WithEnv(env).Load(cmd.Context(), 0, args...)
			if err != nil {
				return fmt.Errorf("loading %v: %w", args, err)
			}

			values, err := kvs.Collect()
			if err != nil {
				return fmt.Errorf("collecting result: %w", err)
			}

			return runInspect(values)
		},
	}

	return cmd
}

func runInspect(values []ezkv.KeyValue) error {
	sort.Slice(values, func(i, j int) bool { return values[i].Key < values[j].Key })

	idx, err := fuzzyfinder.Find(
		values,
		func(i int) string { return values[i].Key },
		fuzzyfinder.WithPromptString("Select a key: "),
	)
	if err != nil {
		return fmt.Errorf("selecting key: %w", err)
	}

	p := tea.NewProgram(newDetailModel(values[idx]))

	_, err = p.Run()

	return err
}

type detailModel struct {
	kv   ezkv.KeyValue
	done bool
}

func newDetailModel(kv ezkv.KeyValue) *detailModel {
	return &detailModel{kv: kv}
}

func (m *detailModel) Init() tea.Cmd { return nil }

func (m *detailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			m.done = true

			return m, tea.Quit
		}
	}

	return m, nil
}

var (
	styleKey   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleHelp  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

func (m *detailModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", styleKey.Render(m.kv.Key))

	value := m.kv.Expanded()
	if m.kv.IsSensitive() {
		value = "REDACTED"
	}

	fmt.Fprintf(&sb, "%s\n\n", styleValue.Render(value))
	fmt.Fprintf(&sb, "source: %s\n", m.kv.Meta.Source.URI)

	if ref := m.kv.Meta.Source.Reference; ref != nil {
		fmt.Fprintf(&sb, "loaded via %s=%s\n", ref.Key, ref.URI)
	}

	sb.WriteString("\n")
	sb.WriteString(styleHelp.Render("press q/esc/enter to quit"))

	return tea.NewView(sb.String())
}
