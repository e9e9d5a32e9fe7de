package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/provisioning/access"
	"github.com/lessanchos/kubedeploy/internal/util/naming"
)

var (
	colorBlue  = lipgloss.Color("#3b82f6")
	colorGreen = lipgloss.Color("#22c55e")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	greenStyle = lipgloss.NewStyle().
			Foreground(colorGreen)
)

// renderTopology lists the masters and slaves of the cluster. Styles are
// applied only when styled is set.
func renderTopology(topo provisioning.ClusterTopology, styled bool) string {
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(render(titleStyle, fmt.Sprintf("  Cluster: %d master(s), %d slave(s)", len(topo.Masters), len(topo.Slaves))))
	b.WriteString("\n")
	b.WriteString(render(dimStyle, "  "+strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(render(sectionStyle, "  Masters"))
	b.WriteString("\n")
	b.WriteString(render(dimStyle, fmt.Sprintf("  %-10s %-20s %-16s %-16s %s", "Name", "Instance", "Public IP", "Private IP", "DNS")))
	b.WriteString("\n")
	for i, m := range topo.Masters {
		fmt.Fprintf(&b, "  %-10s %-20s %-16s %-16s %s\n",
			fmt.Sprintf("master-%d", i+1), m.InstanceID, m.PublicIP, m.PrivateIP, m.PublicDNS)
	}

	if len(topo.Slaves) > 0 {
		b.WriteString("\n")
		b.WriteString(render(sectionStyle, "  Slaves"))
		b.WriteString("\n")
		b.WriteString(render(dimStyle, fmt.Sprintf("  %-10s %-20s %-16s %s", "Name", "Instance", "Public IP", "DNS")))
		b.WriteString("\n")
		for _, s := range topo.Slaves {
			fmt.Fprintf(&b, "  %-10s %-20s %-16s %s\n", s.SlaveID, s.InstanceID, s.PublicIP, s.PublicDNS)
		}
	}

	if primary, ok := topo.PrimaryMaster(); ok {
		b.WriteString("\n")
		b.WriteString(render(greenStyle, fmt.Sprintf("  Dashboard: http://%s:%d", primary.PublicIP, access.DashboardPort)))
		b.WriteString("\n")
		b.WriteString(render(dimStyle, "  Kubeconfig written to "+naming.KubeconfigFile))
		b.WriteString("\n")
	}

	return b.String()
}
