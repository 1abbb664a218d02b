package tracking

import (
	"fmt"
	"time"

	"github.com/nvillanueva/detalia/internal/order"
)

// Phase is the coarse lifecycle bucket a tracking step belongs to. The
// customer UI renders four nodes: Pago, Producción, Finalizado and
// Entrega/Recojo.
type Phase int

const (
	PhasePago Phase = iota
	PhaseProduccion
	PhaseFinalizado
	PhaseEntrega
)

// Step is one row of the customer tracking timeline. Purely derived from the
// order; never persisted.
type Step struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	When        string `json:"when,omitempty"`
	Done        bool   `json:"done"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Phase       Phase  `json:"-"`
}

// Timeline is the detailed tracking view for one order.
type Timeline struct {
	Steps     []Step `json:"steps"`
	Banner    string `json:"banner"`
	Cancelled bool   `json:"cancelled"`
}

// ProjectionInput is everything the projector reads. It carries no
// reference back to the order service: projection is a pure function.
type ProjectionInput struct {
	Status     order.Status
	Mode       order.DeliveryMode
	PickupCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const whenLayout = "02/01/2006 15:04"

// Project builds the detailed tracking timeline. Steps are appended as the
// order reaches them; the handoff step additionally appears (incomplete) once
// production has finished, so the customer sees what comes next.
//
// A cancelled order shows only the terminal cancelled marker: the status alone
// does not say how far the order had progressed before cancellation, so there
// is no completed prefix to retain.
func Project(in ProjectionInput) Timeline {
	if in.Status == order.StatusCancelado {
		return Timeline{
			Steps: []Step{{
				Label:       "Pedido Cancelado",
				Description: "Este pedido fue cancelado.",
				When:        in.UpdatedAt.Format(whenLayout),
				Done:        true,
				Icon:        "x-circle",
				Color:       "red",
			}},
			Banner:    "Pedido Cancelado",
			Cancelled: true,
		}
	}

	steps := []Step{paymentStep(in)}

	pickup := in.Mode == order.ModePickup

	// Pickup orders show no production steps until payment clears.
	if pickup && (in.Status == order.StatusNoPagado || in.Status == order.StatusPagoEnVerificacion) {
		return Timeline{Steps: steps, Banner: banner(in)}
	}

	// A pickup order sitting in PENDIENTE is already collectable.
	if pickup && in.Status == order.StatusPendiente {
		steps = append(steps, pickupStep(in.PickupCode, in.Status == order.StatusCompletado, in.UpdatedAt))
		return Timeline{Steps: steps, Banner: banner(in)}
	}

	switch in.Status {
	case order.StatusEnEjecucion, order.StatusTerminado, order.StatusCompletado:
		steps = append(steps, Step{
			Label:       "En Producción",
			Description: "Tu pedido está siendo elaborado.",
			Done:        true,
			Icon:        "package",
			Color:       "blue",
			Phase:       PhaseProduccion,
		})
	}

	switch in.Status {
	case order.StatusTerminado, order.StatusCompletado:
		steps = append(steps, Step{
			Label:       "Producción Finalizada",
			Description: "La elaboración de tu pedido terminó.",
			Done:        true,
			Icon:        "check",
			Color:       "green",
			Phase:       PhaseFinalizado,
		})
	}

	switch in.Status {
	case order.StatusTerminado:
		steps = append(steps, handoffStep(in, false))
	case order.StatusCompletado:
		steps = append(steps, handoffStep(in, true))
	}

	return Timeline{Steps: steps, Banner: banner(in)}
}

func paymentStep(in ProjectionInput) Step {
	when := in.CreatedAt.Format(whenLayout)

	switch in.Status {
	case order.StatusNoPagado:
		return Step{
			Label:       "Esperando Pago",
			Description: "Aún no registramos tu pago.",
			When:        when,
			Icon:        "clock",
			Color:       "amber",
			Phase:       PhasePago,
		}
	case order.StatusPagoEnVerificacion:
		return Step{
			Label:       "Verificando Pago",
			Description: "Estamos revisando tu comprobante de pago.",
			When:        when,
			Icon:        "search",
			Color:       "amber",
			Phase:       PhasePago,
		}
	default:
		return Step{
			Label:       "Pago Confirmado",
			Description: "Tu pago fue confirmado.",
			When:        when,
			Done:        true,
			Icon:        "check",
			Color:       "green",
			Phase:       PhasePago,
		}
	}
}

func pickupStep(code string, done bool, at time.Time) Step {
	step := Step{
		Label:       "Listo para Recojo",
		Description: fmt.Sprintf("Acércate a tienda con el código %s.", code),
		Icon:        "store",
		Color:       "green",
		Phase:       PhaseEntrega,
	}
	if done {
		step.Done = true
		step.When = at.Format(whenLayout)
	}
	return step
}

func handoffStep(in ProjectionInput, done bool) Step {
	if in.Mode == order.ModePickup {
		return pickupStep(in.PickupCode, done, in.UpdatedAt)
	}

	step := Step{
		Label:       "Entregado",
		Description: "Tu pedido fue entregado.",
		Icon:        "truck",
		Color:       "green",
		Phase:       PhaseEntrega,
	}
	if done {
		step.Done = true
		step.When = in.UpdatedAt.Format(whenLayout)
	}
	return step
}

// banner is the fixed per-status, per-mode headline lookup.
func banner(in ProjectionInput) string {
	pickup := in.Mode == order.ModePickup

	switch in.Status {
	case order.StatusNoPagado:
		return "Esperando la confirmación de tu pago"
	case order.StatusPagoEnVerificacion:
		return "Estamos verificando tu pago"
	case order.StatusPendiente:
		if pickup {
			return fmt.Sprintf("Tu pedido te espera en tienda. Código: %s", in.PickupCode)
		}
		return "Pedido confirmado, pronto entrará en producción"
	case order.StatusEnEjecucion:
		return "Tu pedido está en producción"
	case order.StatusTerminado:
		if pickup {
			return "¡Producción finalizada! Pronto podrás recogerlo"
		}
		return "¡Producción finalizada! Preparando la entrega"
	case order.StatusCompletado:
		if pickup {
			return fmt.Sprintf("¡Listo para recoger! Código: %s", in.PickupCode)
		}
		return "Pedido entregado. ¡Gracias por tu compra!"
	case order.StatusCancelado:
		return "Pedido Cancelado"
	}
	return ""
}

// CurrentPhase reports which phase the timeline considers active. The second
// return is false once the order is fully delivered (no active phase remains).
func (t Timeline) CurrentPhase() (Phase, bool) {
	for _, step := range t.Steps {
		if !step.Done {
			return step.Phase, true
		}
	}

	if len(t.Steps) == 0 {
		return PhasePago, true
	}

	last := t.Steps[len(t.Steps)-1].Phase
	if last == PhaseEntrega {
		return PhaseEntrega, false
	}
	return last + 1, true
}
