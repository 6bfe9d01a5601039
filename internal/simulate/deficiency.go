package simulate

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDeficiency = errors.New("unknown deficiency type")

// Deficiency is a cone deficiency modelled by the simulators.
type Deficiency int

const (
	Deuteranomaly Deficiency = iota // green-weak
	Protanomaly                     // red-weak
	Tritanomaly                     // blue-weak
)

// AllDeficiencies lists every type in report order.
func AllDeficiencies() []Deficiency {
	return []Deficiency{Deuteranomaly, Protanomaly, Tritanomaly}
}

func (d Deficiency) String() string {
	switch d {
	case Deuteranomaly:
		return "deuteranomaly"
	case Protanomaly:
		return "protanomaly"
	case Tritanomaly:
		return "tritanomaly"
	default:
		return fmt.Sprintf("Deficiency(%d)", int(d))
	}
}

// Title is the human-readable panel label.
func (d Deficiency) Title() string {
	switch d {
	case Deuteranomaly:
		return "Deuteranomaly (Green-blind)"
	case Protanomaly:
		return "Protanomaly (Red-blind)"
	case Tritanomaly:
		return "Tritanomaly (Blue-blind)"
	default:
		return d.String()
	}
}

func (d Deficiency) valid() bool {
	return d >= Deuteranomaly && d <= Tritanomaly
}

// ParseDeficiency accepts the canonical names plus the common -opia and
// short forms (deutan, protan, tritan).
func ParseDeficiency(s string) (Deficiency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deuteranomaly", "deuteranopia", "deutan", "d":
		return Deuteranomaly, nil
	case "protanomaly", "protanopia", "protan", "p":
		return Protanomaly, nil
	case "tritanomaly", "tritanopia", "tritan", "t":
		return Tritanomaly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDeficiency, s)
	}
}

func (d Deficiency) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDeficiency, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Deficiency) UnmarshalText(b []byte) error {
	parsed, err := ParseDeficiency(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
