package questiongen

import (
	"fmt"
	"math/rand"
)

// OptionCount is the number of options on every synthesized multiple-choice question.
const OptionCount = 4

var letters = [OptionCount]string{"A", "B", "C", "D"}

// ShuffleAndLetter places correct among exactly three distractors in a uniformly random order
// and returns the letter of the position correct landed in.
func ShuffleAndLetter(correct string, distractors []string, rng *rand.Rand) ([]string, string, error) {
	if len(distractors) != OptionCount-1 {
		return nil, "", fmt.Errorf("need %d distractors, got %d", OptionCount-1, len(distractors))
	}
	source := append([]string{correct}, distractors...)
	perm := rng.Perm(OptionCount)
	options := make([]string, OptionCount)
	letter := ""
	for pos, from := range perm {
		options[pos] = source[from]
		if from == 0 {
			letter = letters[pos]
		}
	}
	return options, letter, nil
}

// LetterIndex maps "A".."D" to 0..3; ok is false for anything else.
func LetterIndex(letter string) (int, bool) {
	for i, l := range letters {
		if l == letter {
			return i, true
		}
	}
	return -1, false
}
