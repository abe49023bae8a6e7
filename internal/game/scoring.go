package game

// timeBonusMax is the bonus for a correct answer with the full time limit
// still on the clock; the bonus scales linearly down to zero.
const timeBonusMax = 500

// Score computes the award for a correct answer: base points plus a time
// bonus of floor(remaining/limit * 500). Remaining time is measured at round
// close, not at submission, so every correct answer in the same round shares
// one bonus. Incorrect or missing answers never reach this function.
func Score(basePoints, remainingSeconds, timeLimitSeconds int) int {
	if timeLimitSeconds <= 0 {
		return basePoints
	}
	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	if remainingSeconds > timeLimitSeconds {
		remainingSeconds = timeLimitSeconds
	}
	return basePoints + remainingSeconds*timeBonusMax/timeLimitSeconds
}
