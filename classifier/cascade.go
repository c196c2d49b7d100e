package classifier

// Tier is the cascade stage that produced a decision.
type Tier int

const (
	// TierScore decides on weighted band scores.
	TierScore Tier = iota + 1
	// TierPixels decides on raw mask pixel counts.
	TierPixels
	// TierBrightness decides on mean band brightness and always yields a label.
	TierBrightness
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierScore:
		return "score"
	case TierPixels:
		return "pixels"
	case TierBrightness:
		return "brightness"
	}
	return "unknown"
}

// Evidence is everything the cascade looks at.
type Evidence struct {
	Counts     BandCounts  `json:"counts"`
	Scores     Scores      `json:"scores"`
	Pixels     PixelCounts `json:"pixels"`
	Brightness [3]float64  `json:"-"`
}

// Decision is the outcome of the cascade together with its evidence.
type Decision struct {
	Label    Label    `json:"label"`
	Tier     Tier     `json:"tier"`
	Evidence Evidence `json:"evidence"`
}

// majority applies one tier's rule: red, then yellow must strictly beat both
// competitors and the floor; green only has to clear the floor.
//
// The green rule does not compare against the other colors. This looks like
// an inconsistency in the tuned heuristic, but outputs on ambiguous crops
// depend on it, so it stays until it can be checked against labeled data.
func majority(red, yellow, green, floor float64) (Label, bool) {
	switch {
	case red > yellow && red > green && red > floor:
		return Red, true
	case yellow > red && yellow > green && yellow > floor:
		return Yellow, true
	case green > floor:
		return Green, true
	}
	return Green, false
}

// brightest picks the lit band from mean brightness. Ties and a brightest
// bottom band both resolve to green.
func brightest(b [3]float64) Label {
	switch {
	case b[Top] > b[Middle] && b[Top] > b[Bottom]:
		return Red
	case b[Middle] > b[Top] && b[Middle] > b[Bottom]:
		return Yellow
	}
	return Green
}

// Decide runs the three-tier cascade. Tier 3 always returns, so Decide is
// total.
//
// Arguments:
//   - ev: The evidence gathered from a crop.
//   - cfg: The classifier config providing the floors.
//
// Returns:
//   - Decision: The label and the tier that produced it.
func Decide(ev Evidence, cfg *Config) Decision {
	d := Decision{Evidence: ev}

	if l, ok := majority(ev.Scores.Red, ev.Scores.Yellow, ev.Scores.Green, cfg.ScoreFloor); ok {
		d.Label, d.Tier = l, TierScore
		return d
	}

	floor := float64(cfg.PixelFloor)
	if l, ok := majority(float64(ev.Pixels.Red), float64(ev.Pixels.Yellow), float64(ev.Pixels.Green), floor); ok {
		d.Label, d.Tier = l, TierPixels
		return d
	}

	d.Label, d.Tier = brightest(ev.Brightness), TierBrightness
	return d
}
