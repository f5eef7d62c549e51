package actions

// Gate blocks double submission. It locks as soon as an action is sent and
// unlocks either on a rejection while the same actor is still current, or
// when a newer snapshot arrives after the request has settled.
type Gate struct {
	locked    bool
	inFlight  bool
	actor     string
	lockedGen uint64
	seenGen   uint64
}

// Locked reports whether controls must be disabled
func (g *Gate) Locked() bool {
	return g.locked
}

// Begin locks the gate for a submission made at generation gen by actor
func (g *Gate) Begin(gen uint64, actor string) error {
	if g.locked {
		return ErrSubmissionLocked
	}
	g.locked = true
	g.inFlight = true
	g.actor = actor
	g.lockedGen = gen
	if gen > g.seenGen {
		g.seenGen = gen
	}
	return nil
}

// Accept records a successful submission. Controls stay disabled until the
// next snapshot replaces them, which may already have arrived.
func (g *Gate) Accept() {
	g.inFlight = false
	if g.locked && g.seenGen > g.lockedGen {
		g.locked = false
	}
}

// Reject records a rejected or failed submission and re-enables controls
// only if the submitting actor is still the current actor.
func (g *Gate) Reject(currentActor string) bool {
	if !g.locked {
		return false
	}
	g.inFlight = false
	if currentActor != g.actor {
		return false
	}
	g.locked = false
	return true
}

// Observe is called for every new view generation
func (g *Gate) Observe(gen uint64) {
	if gen > g.seenGen {
		g.seenGen = gen
	}
	if g.locked && !g.inFlight && gen > g.lockedGen {
		g.locked = false
	}
}

// Reset clears the gate, e.g. when a new hand starts
func (g *Gate) Reset() {
	*g = Gate{}
}
