package audio

import "math"

type rampKind int

const (
	rampSet    rampKind = iota // Step to value at time
	rampLinear                 // Linear from previous event
	rampExp                    // Exponential from previous event
)

type paramEvent struct {
	kind  rampKind
	at    float64 // seconds from render start
	value float64
}

// automation is a time-ordered parameter schedule
// Ramps start from the previous event's time and value
type automation struct {
	initial float64
	events  []paramEvent
}

func newAutomation(initial float64) automation {
	return automation{initial: initial}
}

func (a automation) set(v, at float64) automation {
	a.events = append(a.events, paramEvent{kind: rampSet, at: at, value: v})
	return a
}

func (a automation) linear(v, at float64) automation {
	a.events = append(a.events, paramEvent{kind: rampLinear, at: at, value: v})
	return a
}

func (a automation) exp(v, at float64) automation {
	a.events = append(a.events, paramEvent{kind: rampExp, at: at, value: v})
	return a
}

// valueAt evaluates the schedule at time t
func (a automation) valueAt(t float64) float64 {
	prevAt, prevVal := 0.0, a.initial
	for _, ev := range a.events {
		if t < ev.at {
			span := ev.at - prevAt
			if span <= 0 {
				return prevVal
			}
			frac := (t - prevAt) / span
			switch ev.kind {
			case rampLinear:
				return prevVal + (ev.value-prevVal)*frac
			case rampExp:
				// Undefined across zero or sign change: hold
				if prevVal == 0 || ev.value == 0 || (prevVal > 0) != (ev.value > 0) {
					return prevVal
				}
				return prevVal * math.Pow(ev.value/prevVal, frac)
			default:
				return prevVal
			}
		}
		prevAt, prevVal = ev.at, ev.value
	}
	return prevVal
}
