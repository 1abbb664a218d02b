package tracking

import "github.com/nvillanueva/detalia/internal/order"

// NodeState is the visual state of one node in the coarse 4-node indicator.
type NodeState string

const (
	NodePending NodeState = "pending"
	NodeCurrent NodeState = "current"
	NodeDone    NodeState = "done"
	NodeError   NodeState = "error"
)

// Node is one of the four indicator nodes.
type Node struct {
	Label string    `json:"label"`
	State NodeState `json:"state"`
}

// PhaseView is the coarse step indicator shown above the detailed timeline.
type PhaseView struct {
	Nodes [4]Node `json:"nodes"`
}

// Classify maps an order status and delivery mode onto the 4-node indicator.
// It is computed independently of Project but must agree with it on which
// phase is current for every status and mode; the tests assert that.
func Classify(status order.Status, mode order.DeliveryMode) PhaseView {
	view := PhaseView{Nodes: [4]Node{
		{Label: "Pago"},
		{Label: "Producción"},
		{Label: "Finalizado"},
		{Label: "Entrega"},
	}}
	if mode == order.ModePickup {
		view.Nodes[3].Label = "Recojo"
	}

	// Cancellation collapses every node to an error visual regardless of how
	// far the order had progressed.
	if status == order.StatusCancelado {
		for i := range view.Nodes {
			view.Nodes[i].State = NodeError
		}
		return view
	}

	current := currentNode(status, mode)
	for i := range view.Nodes {
		switch {
		case current < 0 || i < current:
			view.Nodes[i].State = NodeDone
		case i == current:
			view.Nodes[i].State = NodeCurrent
		default:
			view.Nodes[i].State = NodePending
		}
	}
	return view
}

// currentNode returns the active node index, or -1 when the order is complete.
func currentNode(status order.Status, mode order.DeliveryMode) int {
	switch status {
	case order.StatusNoPagado, order.StatusPagoEnVerificacion:
		return 0
	case order.StatusPendiente:
		// A pickup order in PENDIENTE is already collectable; delivery orders
		// are waiting for production to start.
		if mode == order.ModePickup {
			return 3
		}
		return 1
	case order.StatusEnEjecucion:
		return 2
	case order.StatusTerminado:
		return 3
	default: // COMPLETADO
		return -1
	}
}

// Current returns the active phase of the view. The second return is false
// when no phase is active (order complete or cancelled).
func (v PhaseView) Current() (Phase, bool) {
	for i, node := range v.Nodes {
		if node.State == NodeCurrent {
			return Phase(i), true
		}
	}
	return PhaseEntrega, false
}
