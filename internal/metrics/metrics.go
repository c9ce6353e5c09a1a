// Package metrics expõe contadores Prometheus do ciclo de vida das transações.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder agrupa os coletores. Um Recorder nil é válido e não registra nada.
type Recorder struct {
	transitions   *prometheus.CounterVec
	offers        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	publishErrors prometheus.Counter
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "otc",
			Name:      "transaction_transitions_total",
			Help:      "Transições de status aplicadas, por origem e destino.",
		}, []string{"from", "to"}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "otc",
			Name:      "offers_total",
			Help:      "Ofertas por status final.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "otc",
			Name:      "notifications_total",
			Help:      "Notificações recebidas pelo store, separando duplicadas.",
		}, []string{"result"}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otc",
			Name:      "event_publish_errors_total",
			Help:      "Falhas ao publicar eventos no broker.",
		}),
	}
	reg.MustRegister(r.transitions, r.offers, r.notifications, r.publishErrors)
	return r
}

func (r *Recorder) Transition(from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(from, to).Inc()
}

func (r *Recorder) Offer(status string) {
	if r == nil {
		return
	}
	r.offers.WithLabelValues(status).Inc()
}

func (r *Recorder) Notification(duplicate bool) {
	if r == nil {
		return
	}
	result := "created"
	if duplicate {
		result = "duplicate"
	}
	r.notifications.WithLabelValues(result).Inc()
}

func (r *Recorder) PublishError() {
	if r == nil {
		return
	}
	r.publishErrors.Inc()
}
