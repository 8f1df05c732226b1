package arena

// Prune drops every eliminated entity from the live set. When the count
// goes from more than one to exactly one, the survivor is reported once per
// match. A step that takes the count straight to zero reports nothing.
func (a *Arena) Prune() (Team, bool) {
	before := len(a.live)
	kept := a.live[:0]
	for _, e := range a.live {
		if !e.Eliminated() {
			kept = append(kept, e)
		}
	}
	clear(a.live[len(kept):])
	a.live = kept

	if a.winnerReported || before <= 1 || len(a.live) != 1 {
		return "", false
	}
	a.winnerReported = true
	return a.live[0].Team, true
}
