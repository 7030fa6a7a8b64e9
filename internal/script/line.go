package script

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// Kind classifies a script line.
type Kind int

const (
	// KindBlank is an empty line.
	KindBlank Kind = iota
	// KindComment is a line starting with '#'.
	KindComment
	// KindTimer is a delay line such as "t1.5".
	KindTimer
	// KindLoopOpen starts a loop block, e.g. "l3".
	KindLoopOpen
	// KindLoopClose ends the innermost open loop block ("n").
	KindLoopClose
	// KindCommand is any other line.
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindTimer:
		return "timer"
	case KindLoopOpen:
		return "loop"
	case KindLoopClose:
		return "loop-close"
	default:
		return "command"
	}
}

var (
	timerPattern    = regexp.MustCompile(`(?i)^t([\d.]+)(?:\s|$)`)
	loopOpenPattern = regexp.MustCompile(`(?i)^l(\d+)(?:\s|$)`)
)

// Instruction is one parsed script line.
type Instruction struct {
	Kind     Kind
	Text     string
	Duration time.Duration
	Count    int
	Command  string
	Args     []string
}

// IsNoop reports whether the instruction does nothing beyond pacing.
func (i Instruction) IsNoop() bool {
	return i.Kind == KindBlank || i.Kind == KindComment
}

// Classify reports the kind of a raw line without tokenizing it.
func Classify(raw string) Kind {
	line := strings.TrimSpace(raw)
	switch {
	case line == "":
		return KindBlank
	case strings.HasPrefix(line, "#"):
		return KindComment
	case strings.EqualFold(line, "n"):
		return KindLoopClose
	case loopOpenPattern.MatchString(line):
		return KindLoopOpen
	case timerPattern.MatchString(line):
		return KindTimer
	default:
		return KindCommand
	}
}

// Parse turns one raw line into an Instruction. Command names are lower-cased.
func Parse(raw string) (Instruction, error) {
	line := strings.TrimSpace(raw)
	inst := Instruction{Kind: Classify(line), Text: line}

	switch inst.Kind {
	case KindTimer:
		value := timerPattern.FindStringSubmatch(line)[1]
		d, err := ParseSeconds(value)
		if err != nil {
			return inst, megaerrors.NewArgumentError("t", "invalid timer duration "+strconv.Quote(value), err)
		}
		inst.Duration = d
	case KindLoopOpen:
		value := loopOpenPattern.FindStringSubmatch(line)[1]
		count, err := strconv.Atoi(value)
		if err != nil {
			return inst, megaerrors.NewArgumentError("l", "invalid loop count "+strconv.Quote(value), err)
		}
		inst.Count = count
	case KindCommand:
		tokens, err := Tokenize(line)
		if err != nil {
			return inst, err
		}
		if len(tokens) == 0 {
			inst.Kind = KindBlank
			return inst, nil
		}
		inst.Command = strings.ToLower(tokens[0])
		inst.Args = tokens[1:]
	}

	return inst, nil
}

// ParseSeconds converts a decimal number of seconds into a Duration.
func ParseSeconds(value string) (time.Duration, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, strconv.ErrRange
	}
	return time.Duration(f * float64(time.Second)), nil
}
