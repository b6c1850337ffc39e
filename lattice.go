package options

// LatticePricer is a Pricer whose backward induction can honor an explicit
// exercise schedule, which is what Bermudan contracts need.
type LatticePricer interface {
	Pricer

	// SetExerciseSteps records the lattice step indices at which a
	// Bermudan contract may be exercised. European and American contracts
	// ignore the schedule.
	SetExerciseSteps(steps []int)
}

// exerciseSchedule expands the exercise style of the contract into one flag
// per lattice level. European contracts exercise only through the terminal
// payoff, American contracts at every level. Bermudan contracts need a
// non-empty explicit schedule; an index equal to the step count is allowed
// and coincides with expiry.
func exerciseSchedule(contract *OptionContract, steps int,
	exerciseSteps []int) ([]bool, error) {
	schedule := make([]bool, steps+1)
	switch contract.ExerciseStyle {
	case European:
	case American:
		for i := range schedule {
			schedule[i] = true
		}
	case Bermudan:
		if len(exerciseSteps) == 0 {
			return nil, invalidParameterError(
				"Bermudan exercise needs at least one exercise step.")
		}
		for _, step := range exerciseSteps {
			if step < 0 || step > steps {
				return nil, invalidLatticeError(
					"Bermudan exercise step %d is outside a lattice of %d steps.",
					step, steps)
			}
			schedule[step] = true
		}
	}
	return schedule, nil
}
