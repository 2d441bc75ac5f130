package app

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activityStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	dirtyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true)
	columnHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true).Underline(true)
	rowStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	markedRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	selectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	cellCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Bold(true)
	dividerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	panelActiveStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	overlayStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	toastInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)
