package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/courtside/internal/utils"
)

type PlayerInput struct {
	Name string `json:"name"`
	Seed *int   `json:"seed,omitempty"`
}

// ParsePlayerList reads one player per line. A line may end with a comma
// and a seed, as in "Ana Ivanovic, 1". Blank lines are skipped.
func ParsePlayerList(text string) ([]PlayerInput, error) {
	var inputs []PlayerInput

	for i, line := range strings.Split(text, "\n") {
		name := utils.StringOrNil(line)
		if name == nil {
			continue
		}

		input := PlayerInput{Name: *name}
		if idx := strings.LastIndex(*name, ","); idx >= 0 {
			seed, err := strconv.Atoi(strings.TrimSpace((*name)[idx+1:]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: seed must be a number", ErrInvalidInput, i+1)
			}
			input.Name = strings.TrimSpace((*name)[:idx])
			input.Seed = &seed
		}

		if input.Name == "" {
			return nil, fmt.Errorf("%w: line %d: missing player name", ErrInvalidInput, i+1)
		}
		inputs = append(inputs, input)
	}

	return inputs, nil
}
