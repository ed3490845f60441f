package scene

// Balance adjusts scene durations in place so the total approximates
// targetFrames. Hook and end-card timings are never touched. A gap smaller
// than one second of playback is left alone, and every adjusted scene is
// clamped to a two-second floor.
func Balance(scenes []Scene, targetFrames int) {
	total := 0
	for _, s := range scenes {
		total += s.DurationFrames
	}
	if total == 0 || len(scenes) <= 2 {
		return
	}

	diff := targetFrames - total
	if diff > -FPS && diff < FPS {
		return
	}

	adjustable := 0
	for _, s := range scenes {
		if s.Adjustable() {
			adjustable++
		}
	}
	if adjustable == 0 {
		return
	}

	perScene := roundDiv(diff, adjustable)
	for i := range scenes {
		if !scenes[i].Adjustable() {
			continue
		}
		d := scenes[i].DurationFrames + perScene
		if d < minAdjustable {
			d = minAdjustable
		}
		scenes[i].DurationFrames = d
	}
}

// roundDiv divides rounding half away from zero, matching the renderer's
// expectation of symmetric stretch and shrink.
func roundDiv(n, d int) int {
	if n >= 0 {
		return (n + d/2) / d
	}
	return -((-n + d/2) / d)
}
