package rsi

// Status is one tick's dashboard line.
type Status struct {
	Price      float64
	RSI        float64
	ProfitPct  float64
	TotalAsset float64
	ChangeRate float64
}

// Events carries the trader's outbound notifications. Emission never blocks:
// when a consumer falls behind, new events are dropped, old ones kept.
type Events struct {
	logs     chan string
	statuses chan Status
	messages chan string
	charts   chan []float64
}

func newEvents() *Events {
	return &Events{
		logs:     make(chan string, 64),
		statuses: make(chan Status, 16),
		messages: make(chan string, 16),
		charts:   make(chan []float64, 4),
	}
}

// Logs are durable trade and lifecycle lines.
func (e *Events) Logs() <-chan string { return e.logs }

// Statuses are per-tick dashboard updates.
func (e *Events) Statuses() <-chan Status { return e.statuses }

// Messages are short transient state lines (watching, cooldown, balance).
func (e *Events) Messages() <-chan string { return e.messages }

// Charts carry recent fill prices for plotting.
func (e *Events) Charts() <-chan []float64 { return e.charts }

func (e *Events) emitLog(msg string) {
	select {
	case e.logs <- msg:
	default:
	}
}

func (e *Events) emitStatus(s Status) {
	select {
	case e.statuses <- s:
	default:
	}
}

func (e *Events) emitMessage(msg string) {
	select {
	case e.messages <- msg:
	default:
	}
}

func (e *Events) emitChart(prices []float64) {
	select {
	case e.charts <- prices:
	default:
	}
}
