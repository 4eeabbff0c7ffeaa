package exclusivity

// Observer receives run events. Under parallel execution events arrive from
// more than one goroutine, so implementations must be safe for concurrent use.
type Observer interface {
	// PopulationStarted fires when trials for a population begin to be
	// generated.
	PopulationStarted(population int)
	// TrialCompleted fires once per finished trial, before it is yielded.
	TrialCompleted(result TrialResult)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PopulationStarted(int)     {}
func (NopObserver) TrialCompleted(TrialResult) {}

// Observers fans events out to each observer in order.
type Observers []Observer

func (o Observers) PopulationStarted(population int) {
	for _, obs := range o {
		obs.PopulationStarted(population)
	}
}

func (o Observers) TrialCompleted(result TrialResult) {
	for _, obs := range o {
		obs.TrialCompleted(result)
	}
}
