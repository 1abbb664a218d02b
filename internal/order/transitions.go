package order

import (
	"errors"
	"fmt"
)

// allowedTransitions is the single source of truth for the order lifecycle.
// The happy path is NO_PAGADO → PAGO_EN_VERIFICACION → PENDIENTE →
// EN_EJECUCION → TERMINADO → COMPLETADO; CANCELADO is the absorbing error
// branch. A rejected payment proof sends the order back from
// PAGO_EN_VERIFICACION to NO_PAGADO. No transition skips states.
var allowedTransitions = map[Status]map[Status]bool{
	StatusNoPagado: {
		StatusPagoEnVerificacion: true,
		StatusCancelado:          true,
	},
	StatusPagoEnVerificacion: {
		StatusPendiente: true,
		StatusNoPagado:  true,
		StatusCancelado: true,
	},
	StatusPendiente: {
		StatusEnEjecucion: true,
		StatusCancelado:   true,
	},
	StatusEnEjecucion: {
		StatusTerminado: true,
		StatusCancelado: true,
	},
	StatusTerminado: {
		StatusCompletado: true,
	},
	StatusCompletado: {},
	StatusCancelado:  {},
}

// ErrIllegalTransition is returned when the requested status is not reachable
// from the current one. The caller must not coerce the request to a nearby
// legal state.
var ErrIllegalTransition = errors.New("illegal order status transition")

// TransitionResult is the outcome of an admitted transition. Notify tells the
// caller a customer notification must be dispatched; what the notification
// says is not this package's concern.
type TransitionResult struct {
	Next   Status
	Notify bool
}

// RequestTransition decides whether an order may move from current to
// requested. It is a pure function over its arguments: the authoritative
// current status lives in the remote order service, and concurrent admin
// sessions racing on the same order are resolved there, not here.
func RequestTransition(current, requested Status) (TransitionResult, error) {
	if !allowedTransitions[current][requested] {
		return TransitionResult{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, requested)
	}

	return TransitionResult{Next: requested, Notify: true}, nil
}

// CanTransition reports whether the move from current to requested is legal,
// without constructing an error.
func CanTransition(current, requested Status) bool {
	return allowedTransitions[current][requested]
}

// NextStatuses returns the legal targets from current, in lifecycle order.
func NextStatuses(current Status) []Status {
	var targets []Status
	for _, candidate := range AllStatuses {
		if allowedTransitions[current][candidate] {
			targets = append(targets, candidate)
		}
	}
	return targets
}
