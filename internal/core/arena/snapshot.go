package arena

// TeamHealth is the externally visible state of one live entity.
type TeamHealth struct {
	Team   Team `json:"team"`
	Health int  `json:"health"`
}

// Snapshot lists live teams with their health, in live-set order.
type Snapshot []TeamHealth

// Health looks up a team in the snapshot.
func (s Snapshot) Health(team Team) (int, bool) {
	for _, th := range s {
		if th.Team == team {
			return th.Health, true
		}
	}
	return 0, false
}

// Snapshot copies the live teams and their health.
func (a *Arena) Snapshot() Snapshot {
	out := make(Snapshot, 0, len(a.live))
	for _, e := range a.live {
		out = append(out, TeamHealth{Team: e.Team, Health: e.Health})
	}
	return out
}

// EntityView is what a renderer needs to draw one entity.
type EntityView struct {
	Team   Team    `json:"team"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Health int     `json:"hp"`
}

// ItemView is what a renderer needs to draw one item.
type ItemView struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
}

// Frame is a drawing-only copy of the arena.
type Frame struct {
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Entities []EntityView `json:"entities"`
	Items    []ItemView   `json:"items"`
}

// Frame copies positions and sizes for rendering.
func (a *Arena) Frame() Frame {
	f := Frame{
		Width:    a.width,
		Height:   a.height,
		Entities: make([]EntityView, 0, len(a.live)),
		Items:    make([]ItemView, 0, len(a.items)),
	}
	for _, it := range a.items {
		f.Items = append(f.Items, ItemView{Kind: it.Kind.String(), X: it.Pos.X, Y: it.Pos.Y, Radius: it.Radius})
	}
	for _, e := range a.live {
		f.Entities = append(f.Entities, EntityView{Team: e.Team, X: e.Pos.X, Y: e.Pos.Y, Radius: e.Radius, Health: e.Health})
	}
	return f
}

// Entities copies the full live entity state.
func (a *Arena) Entities() []Entity {
	out := make([]Entity, 0, len(a.live))
	for _, e := range a.live {
		out = append(out, *e)
	}
	return out
}

// Items copies the live items.
func (a *Arena) Items() []Item {
	out := make([]Item, 0, len(a.items))
	for _, it := range a.items {
		out = append(out, *it)
	}
	return out
}
