package ui

import "charm.land/lipgloss/v2"

type Theme struct {
	Header      lipgloss.Style
	Status      lipgloss.Style
	PanelBorder lipgloss.Style
	PanelTitle  lipgloss.Style
	PanelBody   lipgloss.Style
	Overlay     lipgloss.Style
	Accent      lipgloss.Style
	Locked      lipgloss.Style
	Error       lipgloss.Style
	Held        lipgloss.Style
	Target      lipgloss.Style
	Cursor      lipgloss.Style
	Muted       lipgloss.Style
	Info        lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVariant("kube_blue")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "high_contrast":
		return highContrastTheme()
	case "retro_terminal":
		return retroTerminalTheme()
	default:
		return kubeBlueTheme()
	}
}

func kubeBlueTheme() Theme {
	kube := lipgloss.Color("#326CE5")
	sky := lipgloss.Color("#8FB8FF")
	mint := lipgloss.Color("#67F0A8")
	coral := lipgloss.Color("#FF6F91")
	amber := lipgloss.Color("#FFC857")
	ink := lipgloss.Color("#0E1420")
	slate := lipgloss.Color("#1B2740")
	paper := lipgloss.Color("#EAF2FF")

	return Theme{
		Header:      lipgloss.NewStyle().Background(kube).Foreground(paper).Bold(true).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(slate).Foreground(paper).Padding(0, 1),
		PanelBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5F8A")),
		PanelTitle:  lipgloss.NewStyle().Foreground(sky).Bold(true),
		PanelBody:   lipgloss.NewStyle().Foreground(paper),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(kube).
			Background(ink).
			Foreground(paper).
			Padding(1, 2),
		Accent: lipgloss.NewStyle().Foreground(sky).Bold(true),
		Locked: lipgloss.NewStyle().Foreground(mint),
		Error:  lipgloss.NewStyle().Foreground(coral).Bold(true),
		Held:   lipgloss.NewStyle().Foreground(ink).Background(amber),
		Target: lipgloss.NewStyle().Foreground(paper).Background(kube),
		Cursor: lipgloss.NewStyle().Foreground(paper).Background(slate).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7A88A6")),
		Info:   lipgloss.NewStyle().Foreground(sky),
	}
}

func highContrastTheme() Theme {
	white := lipgloss.Color("#FFFFFF")
	black := lipgloss.Color("#000000")
	yellow := lipgloss.Color("#FFFF00")
	green := lipgloss.Color("#00FF00")
	red := lipgloss.Color("#FF3030")
	cyan := lipgloss.Color("#00FFFF")

	return Theme{
		Header:      lipgloss.NewStyle().Background(white).Foreground(black).Bold(true).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(black).Foreground(white).Padding(0, 1),
		PanelBorder: lipgloss.NewStyle().Foreground(white),
		PanelTitle:  lipgloss.NewStyle().Foreground(yellow).Bold(true),
		PanelBody:   lipgloss.NewStyle().Foreground(white),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(yellow).
			Background(black).
			Foreground(white).
			Padding(1, 2),
		Accent: lipgloss.NewStyle().Foreground(cyan).Bold(true),
		Locked: lipgloss.NewStyle().Foreground(green).Bold(true),
		Error:  lipgloss.NewStyle().Foreground(red).Bold(true),
		Held:   lipgloss.NewStyle().Foreground(black).Background(yellow),
		Target: lipgloss.NewStyle().Foreground(black).Background(cyan),
		Cursor: lipgloss.NewStyle().Foreground(black).Background(white),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")),
		Info:   lipgloss.NewStyle().Foreground(cyan),
	}
}

func retroTerminalTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	red := lipgloss.Color("#FF6B6B")
	deep := lipgloss.Color("#07150A")
	forest := lipgloss.Color("#12301A")
	glow := lipgloss.Color("#C5F7C4")

	return Theme{
		Header:      lipgloss.NewStyle().Background(deep).Foreground(glow).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(forest).Foreground(glow).Padding(0, 1),
		PanelBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("#1F5C2F")),
		PanelTitle:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		PanelBody:   lipgloss.NewStyle().Foreground(glow),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(amber).
			Background(deep).
			Foreground(glow).
			Padding(1, 2),
		Accent: lipgloss.NewStyle().Foreground(lime).Bold(true),
		Locked: lipgloss.NewStyle().Foreground(lime),
		Error:  lipgloss.NewStyle().Foreground(red).Bold(true),
		Held:   lipgloss.NewStyle().Foreground(deep).Background(amber),
		Target: lipgloss.NewStyle().Foreground(deep).Background(lime),
		Cursor: lipgloss.NewStyle().Foreground(glow).Background(forest).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#73A17A")),
		Info:   lipgloss.NewStyle().Foreground(lime),
	}
}
