package lfo

import (
	"fmt"
	"strings"
)

// ParseMessage parses one text control message:
//
//	bang
//	looping 0|1
//	phase <0..1>
//	rate|freq <hz>
//	type <0..5|name>
//	shape|physics <0..1>
//	damping <0..1>
//
// A bare number sets the rate, as a float sent to the first inlet would.
// Values are not range-checked here; the oscillator clamps them.
func ParseMessage(line string) (Event, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty message")
	}
	head, args := fields[0], fields[1:]

	if v, err := parseNumber(head); err == nil && len(args) == 0 {
		return SetParam{Input: InputRate, Value: v}, nil
	}

	switch head {
	case "bang", "trigger":
		if len(args) != 0 {
			return nil, fmt.Errorf("%s takes no arguments", head)
		}
		return Trigger{}, nil
	case "looping":
		v, err := oneNumber(head, args)
		if err != nil {
			return nil, err
		}
		return SetLooping{On: v != 0}, nil
	case "phase":
		v, err := oneNumber(head, args)
		if err != nil {
			return nil, err
		}
		return SetPhase{Phase: v}, nil
	case "type":
		if len(args) != 1 {
			return nil, fmt.Errorf("type expects 1 argument, got %d", len(args))
		}
		k, err := ParseKind(args[0])
		if err != nil {
			return nil, err
		}
		return SetParam{Input: InputType, Value: float64(k)}, nil
	}

	in, ok := inputAliases[head]
	if !ok {
		return nil, fmt.Errorf("unknown message %q", head)
	}
	v, err := oneNumber(head, args)
	if err != nil {
		return nil, err
	}
	return SetParam{Input: in, Value: v}, nil
}

var inputAliases = map[string]Input{
	"rate":    InputRate,
	"freq":    InputRate,
	"shape":   InputShape,
	"physics": InputShape,
	"damping": InputDamping,
}

func oneNumber(head string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s expects 1 argument, got %d", head, len(args))
	}
	v, err := parseNumber(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", head, args[0])
	}
	return v, nil
}

// ParseArgs builds Params from up to three creation arguments:
// [type] [shape] [damping]. Missing arguments keep their defaults and every
// value is clamped into its domain.
func ParseArgs(args []string) (*Params, error) {
	p := NewDefaultParams()
	if err := p.ApplyArgs(args); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyArgs overrides only the positions present in args, so creation
// arguments can be layered over a preset. p is untouched on error.
func (p *Params) ApplyArgs(args []string) error {
	if len(args) > 3 {
		return fmt.Errorf("expected at most 3 arguments (type shape damping), got %d", len(args))
	}
	next := *p
	if len(args) >= 1 {
		k, err := ParseKind(args[0])
		if err != nil {
			return err
		}
		next.Kind = k
	}
	if len(args) >= 2 {
		v, err := parseNumber(args[1])
		if err != nil {
			return fmt.Errorf("invalid shape %q", args[1])
		}
		next.Shape = clampInput(InputShape, v)
	}
	if len(args) >= 3 {
		v, err := parseNumber(args[2])
		if err != nil {
			return fmt.Errorf("invalid damping %q", args[2])
		}
		next.Damping = clampInput(InputDamping, v)
	}
	*p = next
	return nil
}
