package stats

import (
	"fmt"
	"regexp"
	"strconv"
)

// Roll rolls n dice with the specified number of sides and returns the total
func Roll(src Source, n, sides int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += src.Intn(sides) + 1
	}
	return total
}

// Between returns a uniform integer in [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Chance returns true with probability p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Dice is parsed dice notation such as "2d6+3".
type Dice struct {
	Count int
	Sides int
	Bonus int
}

// diceNotationRegex matches dice notation like "1d6", "2d4+1", "1d8-2", or a flat "25"
var diceNotationRegex = regexp.MustCompile(`^(?:(\d+)d(\d+))?([+-]?\d+)?$`)

// ParseDice parses dice notation. Supports "1d6", "2d4", "1d8+2", "2d6-1" and flat values.
func ParseDice(notation string) (Dice, error) {
	if notation == "" {
		return Dice{}, nil
	}

	matches := diceNotationRegex.FindStringSubmatch(notation)
	if matches == nil || (matches[1] == "" && matches[3] == "") {
		return Dice{}, fmt.Errorf("invalid dice notation %q", notation)
	}

	var d Dice
	if matches[1] != "" {
		d.Count, _ = strconv.Atoi(matches[1])
		d.Sides, _ = strconv.Atoi(matches[2])
		if d.Sides == 0 {
			return Dice{}, fmt.Errorf("invalid dice notation %q: zero sides", notation)
		}
	}
	if matches[3] != "" {
		d.Bonus, _ = strconv.Atoi(matches[3])
	}
	return d, nil
}

// Roll rolls the dice; the result is never negative.
func (d Dice) Roll(src Source) int {
	total := d.Bonus
	if d.Count > 0 {
		total += Roll(src, d.Count, d.Sides)
	}
	if total < 0 {
		return 0
	}
	return total
}

// Mean is the expected roll.
func (d Dice) Mean() float64 {
	return float64(d.Count)*float64(d.Sides+1)/2 + float64(d.Bonus)
}

// Max is the largest possible roll.
func (d Dice) Max() int {
	return d.Count*d.Sides + d.Bonus
}

func (d Dice) String() string {
	switch {
	case d.Count == 0:
		return strconv.Itoa(d.Bonus)
	case d.Bonus == 0:
		return fmt.Sprintf("%dd%d", d.Count, d.Sides)
	default:
		return fmt.Sprintf("%dd%d%+d", d.Count, d.Sides, d.Bonus)
	}
}

// UnmarshalYAML lets data files write dice as plain strings.
func (d *Dice) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDice(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
