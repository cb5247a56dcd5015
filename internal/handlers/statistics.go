package handlers

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fgomezproyectos/gestor-gastos/internal/stats"
)

// topDescriptions is how many per-description groups the page shows.
const topDescriptions = 8

// chartMonths is how many recent months feed the dashboard chart.
const chartMonths = 12

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// monthLabel formats a (year, month) pair for display, e.g. "Enero 2025".
func monthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// MesItem is one month row of the statistics table.
type MesItem struct {
	Mes      string
	Total    string
	Cantidad int
	Promedio string
}

// DescripcionItem is one per-description group.
type DescripcionItem struct {
	Descripcion string
	Total       string
	Cantidad    int
}

// StatsViewModel is the data for the statistics page.
type StatsViewModel struct {
	User string
	// Full history, oldest month first
	Meses []MesItem
	// Last 12 months, oldest first, for the bar chart
	ChartLabels []string
	ChartTotals []string
	// Largest per-description totals
	Descripciones []DescripcionItem
}

// Estadisticas renders monthly and per-description aggregates for the
// principal's ledger. Store failures bounce back to the listing with a
// neutral message.
func (h *Handlers) Estadisticas(w http.ResponseWriter, r *http.Request) {
	user := Principal(r)

	expenses, err := h.db.ListByOwner(r.Context(), user)
	if err != nil {
		logrus.WithError(err).WithField("user", user).Error("list expenses for stats failed")
		http.Redirect(w, r, "/?msg=No+se+pudieron+cargar+las+estadisticas", http.StatusFound)
		return
	}

	vm := StatsViewModel{User: user}

	for _, m := range stats.MonthlyAscending(expenses) {
		vm.Meses = append(vm.Meses, MesItem{
			Mes:      monthLabel(m.Year, m.Month),
			Total:    m.Total.String(),
			Cantidad: m.Count,
			Promedio: m.Average.String(),
		})
	}

	// Newest-first slice, re-reversed so the chart reads left to right
	recent := stats.RecentFirst(expenses, chartMonths)
	for i := len(recent) - 1; i >= 0; i-- {
		vm.ChartLabels = append(vm.ChartLabels, monthLabel(recent[i].Year, recent[i].Month))
		vm.ChartTotals = append(vm.ChartTotals, recent[i].Total.String())
	}

	for _, d := range stats.TopDescriptions(expenses, topDescriptions) {
		vm.Descripciones = append(vm.Descripciones, DescripcionItem{
			Descripcion: d.Description,
			Total:       d.Total.String(),
			Cantidad:    d.Count,
		})
	}

	h.render(w, "estadisticas.html", vm)
}
