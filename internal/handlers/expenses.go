package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/fgomezproyectos/gestor-gastos/internal/models"
	"github.com/fgomezproyectos/gestor-gastos/internal/money"
	"github.com/fgomezproyectos/gestor-gastos/internal/storage"
)

// fechaInputLayout is the datetime-local form value layout.
const fechaInputLayout = "2006-01-02T15:04"

// GastoItem is one ledger row prepared for a template.
type GastoItem struct {
	ID          int64
	Descripcion string
	Monto       string
	Fecha       string
	FechaInput  string
}

// IndexViewModel is the data for the ledger listing.
type IndexViewModel struct {
	User   string
	Gastos []GastoItem
	Total  string
	Error  string
	Msg    string
	// Re-populated form values after a rejected add
	FormDescripcion string
	FormMonto       string
}

// EditViewModel is the data for the edit form.
type EditViewModel struct {
	User  string
	Gasto GastoItem
	Error string
}

func gastoItem(e models.Expense) GastoItem {
	return GastoItem{
		ID:          e.ID,
		Descripcion: e.Description,
		Monto:       e.Amount.String(),
		Fecha:       e.CreatedAt.Format("2006-01-02 15:04"),
		FechaInput:  e.CreatedAt.Format(fechaInputLayout),
	}
}

// Index renders the principal's ledger with its exact total.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, IndexViewModel{Msg: r.URL.Query().Get("msg")})
}

// renderIndex fills in the listing and total around the given view model.
func (h *Handlers) renderIndex(w http.ResponseWriter, r *http.Request, vm IndexViewModel) {
	user := Principal(r)

	expenses, err := h.db.ListByOwner(r.Context(), user)
	if err != nil {
		logrus.WithError(err).WithField("user", user).Error("list expenses failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	total, err := h.db.TotalFor(r.Context(), user)
	if err != nil {
		logrus.WithError(err).WithField("user", user).Error("total failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm.User = user
	vm.Total = total.String()
	vm.Gastos = make([]GastoItem, 0, len(expenses))
	for _, e := range expenses {
		vm.Gastos = append(vm.Gastos, gastoItem(e))
	}
	h.render(w, "index.html", vm)
}

// AddGasto handles the add-expense form on the listing page.
func (h *Handlers) AddGasto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderIndex(w, r, IndexViewModel{Error: "Formulario inválido."})
		return
	}

	descripcion := r.FormValue("descripcion")
	montoStr := r.FormValue("monto")

	monto, err := money.Parse(montoStr)
	if err != nil {
		h.renderIndex(w, r, IndexViewModel{
			Error:           "Monto inválido.",
			FormDescripcion: descripcion,
			FormMonto:       montoStr,
		})
		return
	}

	if _, err := h.db.AddExpense(r.Context(), Principal(r), descripcion, monto); err != nil {
		if errors.Is(err, storage.ErrEmptyDescription) {
			h.renderIndex(w, r, IndexViewModel{
				Error:     "La descripción es obligatoria.",
				FormMonto: montoStr,
			})
			return
		}
		logrus.WithError(err).WithField("user", Principal(r)).Error("add expense failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// EditGastoForm renders the edit form for one of the principal's expenses.
func (h *Handlers) EditGastoForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	expense, err := h.db.GetExpense(r.Context(), id, Principal(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Gasto no encontrado o sin permiso", http.StatusNotFound)
			return
		}
		logrus.WithError(err).WithField("id", id).Error("get expense failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, "modificar.html", EditViewModel{User: Principal(r), Gasto: gastoItem(*expense)})
}

// UpdateGasto applies the edit form. An optional fecha field moves the
// expense's timestamp.
func (h *Handlers) UpdateGasto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	user := Principal(r)
	expense, err := h.db.GetExpense(r.Context(), id, user)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Gasto no encontrado o sin permiso", http.StatusNotFound)
			return
		}
		logrus.WithError(err).WithField("id", id).Error("get expense failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	descripcion := r.FormValue("descripcion")
	montoStr := r.FormValue("monto")

	monto, err := money.Parse(montoStr)
	if err != nil {
		h.render(w, "modificar.html", EditViewModel{User: user, Gasto: gastoItem(*expense), Error: "Monto inválido."})
		return
	}

	var fecha *time.Time
	if fechaStr := r.FormValue("fecha"); fechaStr != "" {
		parsed, err := time.Parse(fechaInputLayout, fechaStr)
		if err != nil {
			h.render(w, "modificar.html", EditViewModel{User: user, Gasto: gastoItem(*expense), Error: "Fecha inválida."})
			return
		}
		fecha = &parsed
	}

	if err := h.db.UpdateExpense(r.Context(), id, user, descripcion, monto, fecha); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyDescription):
			h.render(w, "modificar.html", EditViewModel{User: user, Gasto: gastoItem(*expense), Error: "La descripción es obligatoria."})
		case errors.Is(err, storage.ErrNotFound):
			// Deleted since the form was loaded
			http.Error(w, "Gasto no encontrado o sin permiso", http.StatusNotFound)
		default:
			logrus.WithError(err).WithField("id", id).Error("update expense failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// DeleteGasto deletes one of the principal's expenses. Missing or non-owned
// ids are a silent no-op.
func (h *Handlers) DeleteGasto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.db.DeleteExpense(r.Context(), id, Principal(r)); err != nil {
		logrus.WithError(err).WithField("id", id).Error("delete expense failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
