// cmd/datalogger/list.go
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tamzrod/modbus-datalogger/internal/config"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// formatDeviceList renders the configured devices and their tags.
func formatDeviceList(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Devices"))
	b.WriteString("\n")

	if len(cfg.Devices) == 0 {
		b.WriteString(dimStyle.Render("No devices configured"))
		return b.String()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("DEVICE", "TYPE", "ENDPOINT", "TAG", "ADDRESS", "VALUE", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, d := range cfg.Devices {
		endpoint := "-"
		if d.ModbusTCP != nil {
			endpoint = d.ModbusTCP.Endpoint()
		} else if d.ModbusRTU != nil {
			endpoint = fmt.Sprintf("%s @ %d", d.ModbusRTU.Com, d.ModbusRTU.Baudrate)
		}

		tags := d.Tags()
		if len(tags) == 0 {
			t.Row(d.Name, string(d.Type), endpoint, "-", "-", "-", "")
			continue
		}
		for _, tag := range tags {
			t.Row(d.Name, string(d.Type), endpoint, tag.Name, fmt.Sprint(tag.Address), tag.Value.String(), tag.Description)
		}
	}

	b.WriteString(t.String())
	return b.String()
}
