package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/tracking"
)

func input(status order.Status, mode order.DeliveryMode) tracking.ProjectionInput {
	return tracking.ProjectionInput{
		Status:     status,
		Mode:       mode,
		PickupCode: "RC-7431",
		CreatedAt:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 3, 16, 18, 5, 0, 0, time.UTC),
	}
}

func labels(steps []tracking.Step) []string {
	var out []string
	for _, s := range steps {
		out = append(out, s.Label)
	}
	return out
}

func TestProject_StepSequences(t *testing.T) {
	tests := []struct {
		name       string
		status     order.Status
		mode       order.DeliveryMode
		wantLabels []string
		wantDone   []bool
	}{
		{
			name:       "no_pagado_delivery",
			status:     order.StatusNoPagado,
			mode:       order.ModeDelivery,
			wantLabels: []string{"Esperando Pago"},
			wantDone:   []bool{false},
		},
		{
			name:       "verificacion_pickup_stops_after_payment",
			status:     order.StatusPagoEnVerificacion,
			mode:       order.ModePickup,
			wantLabels: []string{"Verificando Pago"},
			wantDone:   []bool{false},
		},
		{
			name:       "pendiente_delivery",
			status:     order.StatusPendiente,
			mode:       order.ModeDelivery,
			wantLabels: []string{"Pago Confirmado"},
			wantDone:   []bool{true},
		},
		{
			name:       "pendiente_pickup_is_collectable",
			status:     order.StatusPendiente,
			mode:       order.ModePickup,
			wantLabels: []string{"Pago Confirmado", "Listo para Recojo"},
			wantDone:   []bool{true, false},
		},
		{
			name:       "en_ejecucion_delivery",
			status:     order.StatusEnEjecucion,
			mode:       order.ModeDelivery,
			wantLabels: []string{"Pago Confirmado", "En Producción"},
			wantDone:   []bool{true, true},
		},
		{
			name:       "terminado_pickup_shows_active_pickup_step",
			status:     order.StatusTerminado,
			mode:       order.ModePickup,
			wantLabels: []string{"Pago Confirmado", "En Producción", "Producción Finalizada", "Listo para Recojo"},
			wantDone:   []bool{true, true, true, false},
		},
		{
			name:       "terminado_delivery_shows_pending_handoff",
			status:     order.StatusTerminado,
			mode:       order.ModeDelivery,
			wantLabels: []string{"Pago Confirmado", "En Producción", "Producción Finalizada", "Entregado"},
			wantDone:   []bool{true, true, true, false},
		},
		{
			name:       "completado_delivery",
			status:     order.StatusCompletado,
			mode:       order.ModeDelivery,
			wantLabels: []string{"Pago Confirmado", "En Producción", "Producción Finalizada", "Entregado"},
			wantDone:   []bool{true, true, true, true},
		},
		{
			name:       "completado_pickup",
			status:     order.StatusCompletado,
			mode:       order.ModePickup,
			wantLabels: []string{"Pago Confirmado", "En Producción", "Producción Finalizada", "Listo para Recojo"},
			wantDone:   []bool{true, true, true, true},
		},
		{
			name:       "cancelado_shows_terminal_marker_only",
			status:     order.StatusCancelado,
			mode:       order.ModeDelivery,
			wantLabels: []string{"Pedido Cancelado"},
			wantDone:   []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeline := tracking.Project(input(tt.status, tt.mode))

			require.Equal(t, tt.wantLabels, labels(timeline.Steps))
			for i, step := range timeline.Steps {
				assert.Equal(t, tt.wantDone[i], step.Done, "step %q", step.Label)
			}
			assert.Equal(t, tt.status == order.StatusCancelado, timeline.Cancelled)
			assert.NotEmpty(t, timeline.Banner)
		})
	}
}

func TestProject_TerminadoPickupBanner(t *testing.T) {
	timeline := tracking.Project(input(order.StatusTerminado, order.ModePickup))

	assert.Equal(t, "¡Producción finalizada! Pronto podrás recogerlo", timeline.Banner)

	last := timeline.Steps[len(timeline.Steps)-1]
	assert.Equal(t, "Listo para Recojo", last.Label)
	assert.False(t, last.Done)
	assert.Contains(t, last.Description, "RC-7431")
}

func TestProject_CompletadoDeliveryHasNoPickupCode(t *testing.T) {
	timeline := tracking.Project(input(order.StatusCompletado, order.ModeDelivery))

	last := timeline.Steps[len(timeline.Steps)-1]
	assert.Equal(t, "Entregado", last.Label)
	assert.True(t, last.Done)
	for _, step := range timeline.Steps {
		assert.NotContains(t, step.Description, "RC-7431")
	}
	assert.NotContains(t, timeline.Banner, "RC-7431")
}

func TestProject_CompletadoPickupBannerEmbedsCode(t *testing.T) {
	timeline := tracking.Project(input(order.StatusCompletado, order.ModePickup))
	assert.Contains(t, timeline.Banner, "RC-7431")
}

func TestClassify_Cancelado(t *testing.T) {
	for _, mode := range []order.DeliveryMode{order.ModeDelivery, order.ModePickup} {
		view := tracking.Classify(order.StatusCancelado, mode)
		for _, node := range view.Nodes {
			assert.Equal(t, tracking.NodeError, node.State)
		}
		_, active := view.Current()
		assert.False(t, active)
	}
}

func TestClassify_PickupLabel(t *testing.T) {
	assert.Equal(t, "Recojo", tracking.Classify(order.StatusPendiente, order.ModePickup).Nodes[3].Label)
	assert.Equal(t, "Entrega", tracking.Classify(order.StatusPendiente, order.ModeDelivery).Nodes[3].Label)
}

// The coarse indicator and the detailed timeline are computed independently;
// they must agree on the current phase for every status and mode.
func TestProjectorAndClassifierAgree(t *testing.T) {
	for _, status := range order.AllStatuses {
		for _, mode := range []order.DeliveryMode{order.ModeDelivery, order.ModePickup} {
			t.Run(string(status)+"_"+string(mode), func(t *testing.T) {
				timeline := tracking.Project(input(status, mode))
				view := tracking.Classify(status, mode)

				if status == order.StatusCancelado {
					require.True(t, timeline.Cancelled)
					for _, node := range view.Nodes {
						assert.Equal(t, tracking.NodeError, node.State)
					}
					return
				}

				timelinePhase, timelineActive := timeline.CurrentPhase()
				viewPhase, viewActive := view.Current()

				require.Equal(t, timelineActive, viewActive)
				if timelineActive {
					assert.Equal(t, timelinePhase, viewPhase)
				}
			})
		}
	}
}
